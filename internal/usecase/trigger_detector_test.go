package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/templates"
)

func TestDetectTriggers(t *testing.T) {
	base := entity.Flight{ID: "f1", FlightNumber: "AA100", Status: entity.FlightOnTime, Gate: "A1", Terminal: "1"}

	with := func(mutate func(f *entity.Flight)) entity.Flight {
		f := base
		mutate(&f)
		return f
	}

	tests := []struct {
		name string
		old  *entity.Flight
		new  entity.Flight
		want Triggers
	}{
		{
			name: "no change",
			old:  &base,
			new:  base,
			want: Triggers{},
		},
		{
			name: "delay crosses threshold",
			old:  &base,
			new:  with(func(f *entity.Flight) { f.DelayMinutes = 30 }),
			want: Triggers{Delay: true},
		},
		{
			name: "delay below threshold",
			old:  &base,
			new:  with(func(f *entity.Flight) { f.DelayMinutes = 29 }),
			want: Triggers{},
		},
		{
			name: "delay already above threshold",
			old:  ptr(with(func(f *entity.Flight) { f.DelayMinutes = 45 })),
			new:  with(func(f *entity.Flight) { f.DelayMinutes = 90 }),
			want: Triggers{},
		},
		{
			name: "cancellation edge",
			old:  &base,
			new:  with(func(f *entity.Flight) { f.Status = entity.FlightCancelled }),
			want: Triggers{Cancellation: true},
		},
		{
			name: "already cancelled",
			old:  ptr(with(func(f *entity.Flight) { f.Status = entity.FlightCancelled })),
			new:  with(func(f *entity.Flight) { f.Status = entity.FlightCancelled }),
			want: Triggers{},
		},
		{
			name: "gate and terminal change",
			old:  &base,
			new:  with(func(f *entity.Flight) { f.Gate, f.Terminal = "B7", "2" }),
			want: Triggers{GateChange: true, TerminalChange: true},
		},
		{
			name: "gate cleared is not a change",
			old:  &base,
			new:  with(func(f *entity.Flight) { f.Gate = "" }),
			want: Triggers{},
		},
		{
			name: "nil old flight",
			old:  nil,
			new:  with(func(f *entity.Flight) { f.DelayMinutes = 40 }),
			want: Triggers{Delay: true, GateChange: true, TerminalChange: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTriggers(tt.old, tt.new))
		})
	}
}

func TestDetectTriggers_DelayFiresOncePerCrossing(t *testing.T) {
	delays := []int{0, 10, 35, 50, 20, 31, 31, 120}
	fired := 0
	prev := entity.Flight{ID: "f1", Status: entity.FlightDelayed}
	for _, d := range delays {
		next := prev
		next.DelayMinutes = d
		if DetectTriggers(&prev, next).Delay {
			fired++
		}
		prev = next
	}
	assert.Equal(t, 2, fired)
}

func TestTriggers_DisruptionType(t *testing.T) {
	assert.Equal(t, templates.Cancelled, Triggers{Cancellation: true, Delay: true}.DisruptionType())
	assert.Equal(t, templates.Delay, Triggers{Delay: true, GateChange: true}.DisruptionType())
	assert.Equal(t, templates.GateChange, Triggers{TerminalChange: true}.DisruptionType())
	assert.False(t, Triggers{}.Any())
}

func ptr[T any](v T) *T {
	return &v
}
