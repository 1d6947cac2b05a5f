package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// Delivery is a single message to hand to a channel transport
type Delivery struct {
	JobID     string
	BookingID string
	Passenger entity.Passenger
	Channel   entity.Channel
	Payload   map[string]interface{}
}

// Message returns the rendered text of the delivery
func (d Delivery) Message() string {
	msg, _ := d.Payload[entity.PayloadMessage].(string)
	return msg
}

// Notifier delivers a message over one channel. It is not required to dedupe.
type Notifier interface {
	Send(ctx context.Context, delivery Delivery) error
}

// AviationDataSource reports live flight state
type AviationDataSource interface {
	GetFlightStatus(ctx context.Context, flightNumber string) (*entity.FlightSnapshot, error)
}
