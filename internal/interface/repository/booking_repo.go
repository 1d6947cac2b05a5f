package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// GormBookingRepository implements the BookingRepository interface
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM booking repository
func NewGormBookingRepository(db *gorm.DB) repository.BookingRepository {
	return &GormBookingRepository{
		db: db,
	}
}

// Passengers GORM model for database mapping
type Passengers struct {
	ID                string `gorm:"column:id;type:uuid;primaryKey"`
	Name              string `gorm:"column:name"`
	Email             string `gorm:"column:email"`
	PhoneNumber       string `gorm:"column:phone_number"`
	PreferredLanguage string `gorm:"column:preferred_language"`
}

// TableName overrides the default table name
func (Passengers) TableName() string {
	return "passengers"
}

// Bookings GORM model for database mapping
type Bookings struct {
	ID              string     `gorm:"column:id;type:uuid;primaryKey"`
	FlightID        string     `gorm:"column:flight_id;type:uuid;index"`
	PassengerID     string     `gorm:"column:passenger_id;type:uuid;index"`
	PassengerStatus string     `gorm:"column:passenger_status"`
	TicketPrice     float64    `gorm:"column:ticket_price"`
	FareClass       string     `gorm:"column:fare_class"`
	SeatNumber      string     `gorm:"column:seat_number"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	Passenger       Passengers `gorm:"foreignKey:PassengerID"`
}

// TableName overrides the default table name
func (Bookings) TableName() string {
	return "bookings"
}

// FindByID returns the booking joined with its passenger, or entity.ErrBookingNotFound
func (r *GormBookingRepository) FindByID(ctx context.Context, id string) (*entity.BookingWithPassenger, error) {
	var model Bookings
	result := r.db.WithContext(ctx).
		Joins("Passenger").
		Where("bookings.id = ?", id).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrBookingNotFound
		}
		return nil, result.Error
	}
	return model.toEntity(), nil
}

// ListByFlight returns every booking on the flight with its passenger
func (r *GormBookingRepository) ListByFlight(ctx context.Context, flightID string) ([]*entity.BookingWithPassenger, error) {
	var models []Bookings
	result := r.db.WithContext(ctx).
		Joins("Passenger").
		Where("bookings.flight_id = ?", flightID).
		Order("bookings.created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	bookings := make([]*entity.BookingWithPassenger, 0, len(models))
	for i := range models {
		bookings = append(bookings, models[i].toEntity())
	}
	return bookings, nil
}

// CountByFlight counts the bookings on a flight
func (r *GormBookingRepository) CountByFlight(ctx context.Context, flightID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&Bookings{}).
		Where("flight_id = ?", flightID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

func (m Bookings) toEntity() *entity.BookingWithPassenger {
	return &entity.BookingWithPassenger{
		Booking: entity.Booking{
			ID:              m.ID,
			FlightID:        m.FlightID,
			PassengerID:     m.PassengerID,
			PassengerStatus: m.PassengerStatus,
			TicketPrice:     m.TicketPrice,
			FareClass:       m.FareClass,
			SeatNumber:      m.SeatNumber,
			CreatedAt:       m.CreatedAt,
		},
		Passenger: entity.Passenger{
			ID:                m.Passenger.ID,
			Name:              m.Passenger.Name,
			Email:             m.Passenger.Email,
			PhoneNumber:       m.Passenger.PhoneNumber,
			PreferredLanguage: m.Passenger.PreferredLanguage,
		},
	}
}
