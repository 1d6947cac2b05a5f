package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// BookingRepository defines read access to bookings and their passengers
type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*entity.BookingWithPassenger, error)
	ListByFlight(ctx context.Context, flightID string) ([]*entity.BookingWithPassenger, error)
	CountByFlight(ctx context.Context, flightID string) (int64, error)
}
