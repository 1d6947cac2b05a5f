package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// GormFlightRepository implements the FlightRepository interface
type GormFlightRepository struct {
	db *gorm.DB
}

// NewGormFlightRepository creates a new GORM flight repository
func NewGormFlightRepository(db *gorm.DB) repository.FlightRepository {
	return &GormFlightRepository{
		db: db,
	}
}

// Flights GORM model for database mapping
type Flights struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	FlightNumber  string    `gorm:"column:flight_number;index"`
	Status        string    `gorm:"column:status"`
	DelayMinutes  int       `gorm:"column:delay_minutes"`
	Gate          string    `gorm:"column:gate"`
	Terminal      string    `gorm:"column:terminal"`
	DepartureTime time.Time `gorm:"column:departure_time"`
	ArrivalTime   time.Time `gorm:"column:arrival_time"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name
func (Flights) TableName() string {
	return "flights"
}

// FindByID returns entity.ErrFlightNotFound when no flight matches
func (r *GormFlightRepository) FindByID(ctx context.Context, id string) (*entity.Flight, error) {
	var model Flights
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrFlightNotFound
		}
		return nil, result.Error
	}
	return model.toEntity(), nil
}

// List returns every flight ordered by departure time
func (r *GormFlightRepository) List(ctx context.Context) ([]*entity.Flight, error) {
	var models []Flights
	result := r.db.WithContext(ctx).Order("departure_time ASC").Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	flights := make([]*entity.Flight, 0, len(models))
	for i := range models {
		flights = append(flights, models[i].toEntity())
	}
	return flights, nil
}

// Create inserts a new flight
func (r *GormFlightRepository) Create(ctx context.Context, flight *entity.Flight) error {
	model := Flights{
		ID:            flight.ID,
		FlightNumber:  flight.FlightNumber,
		Status:        string(flight.Status),
		DelayMinutes:  flight.DelayMinutes,
		Gate:          flight.Gate,
		Terminal:      flight.Terminal,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	flight.CreatedAt = model.CreatedAt
	flight.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes the mutable fields of a flight
func (r *GormFlightRepository) Update(ctx context.Context, flight *entity.Flight) error {
	updatedAt := flight.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&Flights{}).
		Where("id = ?", flight.ID).
		Updates(map[string]interface{}{
			"status":        string(flight.Status),
			"delay_minutes": flight.DelayMinutes,
			"gate":          flight.Gate,
			"terminal":      flight.Terminal,
			"updated_at":    updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrFlightNotFound
	}
	return nil
}

func (m Flights) toEntity() *entity.Flight {
	return &entity.Flight{
		ID:            m.ID,
		FlightNumber:  m.FlightNumber,
		Status:        entity.FlightStatus(m.Status),
		DelayMinutes:  m.DelayMinutes,
		Gate:          m.Gate,
		Terminal:      m.Terminal,
		DepartureTime: m.DepartureTime,
		ArrivalTime:   m.ArrivalTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
