package repository

import (
	"context"

	"flightalert-service/internal/domain/entity"
)

// DecisionRepository stores the append-only decision audit trail
type DecisionRepository interface {
	Create(ctx context.Context, decision *entity.Decision) error
	// LatestByFlight returns nil without error when the flight has no decision yet.
	LatestByFlight(ctx context.Context, flightID string) (*entity.Decision, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Decision, error)
}
