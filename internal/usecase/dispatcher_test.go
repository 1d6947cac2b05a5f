package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
)

type blockingNotifier struct{}

func (blockingNotifier) Send(ctx context.Context, _ repository.Delivery) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestDispatcher(notifiers map[entity.Channel]repository.Notifier, opts DispatcherOptions) *Dispatcher {
	return NewDispatcher(notifiers, opts, metrics.NewMetrics("test", prometheus.NewRegistry()), logger.NewNopLogger())
}

func TestDispatcher_UnknownChannel(t *testing.T) {
	d := newTestDispatcher(map[entity.Channel]repository.Notifier{}, DispatcherOptions{})
	err := d.Dispatch(context.Background(), repository.Delivery{Channel: entity.ChannelSMS})
	assert.ErrorIs(t, err, entity.ErrNoNotifier)
}

func TestDispatcher_SendTimeout(t *testing.T) {
	d := newTestDispatcher(map[entity.Channel]repository.Notifier{
		entity.ChannelEmail: blockingNotifier{},
	}, DispatcherOptions{SendTimeout: 20 * time.Millisecond})

	start := time.Now()
	err := d.Dispatch(context.Background(), repository.Delivery{Channel: entity.ChannelEmail})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	email, sms := &scriptedNotifier{}, &scriptedNotifier{}
	d := newTestDispatcher(map[entity.Channel]repository.Notifier{
		entity.ChannelEmail: email,
		entity.ChannelSMS:   sms,
	}, DispatcherOptions{RatePerSecond: 1000, Burst: 5})

	for i := 0; i < 3; i++ {
		assert.NoError(t, d.Dispatch(context.Background(), repository.Delivery{Channel: entity.ChannelSMS}))
	}
	assert.NoError(t, d.Dispatch(context.Background(), repository.Delivery{Channel: entity.ChannelEmail}))

	assert.Equal(t, 3, sms.callCount())
	assert.Equal(t, 1, email.callCount())
}
