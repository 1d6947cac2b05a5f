package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight storage operations
type FlightRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Flight, error)
	List(ctx context.Context) ([]*entity.Flight, error)
	Create(ctx context.Context, flight *entity.Flight) error
	Update(ctx context.Context, flight *entity.Flight) error
}
