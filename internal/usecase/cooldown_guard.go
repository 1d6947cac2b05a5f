package usecase

import (
	"context"
	"time"

	"flightalert-service/internal/domain/repository"
)

// CooldownWindow is how long after a successful delivery further alerts for a flight are suppressed
const CooldownWindow = 10 * time.Minute

// CooldownGuard suppresses alert storms from rapid successive flight updates
type CooldownGuard struct {
	jobRepo repository.NotificationJobRepository
	window  time.Duration
	now     func() time.Time
}

// NewCooldownGuard creates a guard over the job store
func NewCooldownGuard(jobRepo repository.NotificationJobRepository) *CooldownGuard {
	return &CooldownGuard{
		jobRepo: jobRepo,
		window:  CooldownWindow,
		now:     time.Now,
	}
}

// Active reports whether any job for the flight reached SENT inside the window
func (g *CooldownGuard) Active(ctx context.Context, flightID string) (bool, error) {
	return g.jobRepo.HasSentSince(ctx, flightID, g.now().Add(-g.window))
}
