package entity

import "time"

// FlightStatus is the operational status of a flight
type FlightStatus string

const (
	FlightOnTime    FlightStatus = "ON_TIME"
	FlightDelayed   FlightStatus = "DELAYED"
	FlightCancelled FlightStatus = "CANCELLED"
)

// Valid reports whether s is a known flight status
func (s FlightStatus) Valid() bool {
	switch s {
	case FlightOnTime, FlightDelayed, FlightCancelled:
		return true
	}
	return false
}

// Flight is a snapshot of a flight's state
type Flight struct {
	ID            string       `json:"id"`
	FlightNumber  string       `json:"flight_number"`
	Status        FlightStatus `json:"status"`
	DelayMinutes  int          `json:"delay_minutes"`
	Gate          string       `json:"gate"`
	Terminal      string       `json:"terminal"`
	DepartureTime time.Time    `json:"departure_time"`
	ArrivalTime   time.Time    `json:"arrival_time"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// FlightPatch carries the mutable fields of a flight update. Nil fields are left unchanged.
type FlightPatch struct {
	Status       *FlightStatus `json:"status,omitempty"`
	DelayMinutes *int          `json:"delay_minutes,omitempty"`
	Gate         *string       `json:"gate,omitempty"`
	Terminal     *string       `json:"terminal,omitempty"`
}

// Apply returns a copy of f with the patch applied
func (p FlightPatch) Apply(f Flight) Flight {
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.DelayMinutes != nil {
		f.DelayMinutes = *p.DelayMinutes
	}
	if p.Gate != nil {
		f.Gate = *p.Gate
	}
	if p.Terminal != nil {
		f.Terminal = *p.Terminal
	}
	return f
}

// FlightSnapshot is the live state reported by an aviation data provider
type FlightSnapshot struct {
	FlightNumber   string
	ProviderStatus string
	DelayMinutes   int
	Gate           string
	Terminal       string
}
