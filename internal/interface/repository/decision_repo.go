package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// GormDecisionRepository implements the DecisionRepository interface
type GormDecisionRepository struct {
	db *gorm.DB
}

// NewGormDecisionRepository creates a new GORM decision repository
func NewGormDecisionRepository(db *gorm.DB) repository.DecisionRepository {
	return &GormDecisionRepository{
		db: db,
	}
}

// Decisions GORM model for database mapping. Rows are never updated.
type Decisions struct {
	ID        string                                       `gorm:"column:id;type:uuid;primaryKey"`
	FlightID  string                                       `gorm:"column:flight_id;type:uuid;index:idx_decisions_flight_created,priority:1"`
	Decision  string                                       `gorm:"column:decision"`
	Severity  string                                       `gorm:"column:severity"`
	RiskScore float64                                      `gorm:"column:risk_score"`
	Reason    string                                       `gorm:"column:reason"`
	Context   datatypes.JSONType[entity.DisruptionContext] `gorm:"column:context;type:jsonb"`
	CreatedAt time.Time                                    `gorm:"column:created_at;index:idx_decisions_flight_created,priority:2"`
}

// TableName overrides the default table name
func (Decisions) TableName() string {
	return "decisions"
}

// Create appends a decision to the audit trail
func (r *GormDecisionRepository) Create(ctx context.Context, decision *entity.Decision) error {
	model := Decisions{
		ID:        decision.ID,
		FlightID:  decision.FlightID,
		Decision:  string(decision.Result.Decision),
		Severity:  string(decision.Result.Severity),
		RiskScore: decision.Result.RiskScore,
		Reason:    decision.Result.Reason,
		Context:   datatypes.NewJSONType(decision.Context),
		CreatedAt: decision.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// LatestByFlight returns the newest decision for a flight, or nil when there is none
func (r *GormDecisionRepository) LatestByFlight(ctx context.Context, flightID string) (*entity.Decision, error) {
	var model Decisions
	result := r.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order("created_at DESC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return model.toEntity(), nil
}

// ListRecent returns the newest decisions first
func (r *GormDecisionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Decision, error) {
	var models []Decisions
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	decisions := make([]*entity.Decision, 0, len(models))
	for i := range models {
		decisions = append(decisions, models[i].toEntity())
	}
	return decisions, nil
}

func (m Decisions) toEntity() *entity.Decision {
	return &entity.Decision{
		ID:       m.ID,
		FlightID: m.FlightID,
		Result: entity.DecisionResult{
			Decision:  entity.DecisionOutcome(m.Decision),
			Severity:  entity.Severity(m.Severity),
			RiskScore: m.RiskScore,
			Reason:    m.Reason,
		},
		Context:   m.Context.Data(),
		CreatedAt: m.CreatedAt,
	}
}
