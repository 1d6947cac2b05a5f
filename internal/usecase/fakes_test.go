package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/metrics"
)

type memFlights struct {
	mu      sync.Mutex
	flights map[string]*entity.Flight
	order   []string
}

func newMemFlights(flights ...entity.Flight) *memFlights {
	m := &memFlights{flights: map[string]*entity.Flight{}}
	for i := range flights {
		f := flights[i]
		m.flights[f.ID] = &f
		m.order = append(m.order, f.ID)
	}
	return m
}

func (m *memFlights) FindByID(_ context.Context, id string) (*entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, entity.ErrFlightNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFlights) List(_ context.Context) ([]*entity.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]*entity.Flight, 0, len(m.order))
	for _, id := range m.order {
		cp := *m.flights[id]
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memFlights) Create(_ context.Context, flight *entity.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *flight
	m.flights[flight.ID] = &cp
	m.order = append(m.order, flight.ID)
	return nil
}

func (m *memFlights) Update(_ context.Context, flight *entity.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flights[flight.ID]; !ok {
		return entity.ErrFlightNotFound
	}
	cp := *flight
	m.flights[flight.ID] = &cp
	return nil
}

type memBookings struct {
	bookings []*entity.BookingWithPassenger
	err      error
}

func (m *memBookings) FindByID(_ context.Context, id string) (*entity.BookingWithPassenger, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, entity.ErrBookingNotFound
}

func (m *memBookings) ListByFlight(_ context.Context, flightID string) ([]*entity.BookingWithPassenger, error) {
	if m.err != nil {
		return nil, m.err
	}
	var res []*entity.BookingWithPassenger
	for _, b := range m.bookings {
		if b.FlightID == flightID {
			res = append(res, b)
		}
	}
	return res, nil
}

func (m *memBookings) CountByFlight(ctx context.Context, flightID string) (int64, error) {
	res, err := m.ListByFlight(ctx, flightID)
	return int64(len(res)), err
}

type memDecisions struct {
	mu    sync.Mutex
	items []*entity.Decision
}

func (m *memDecisions) Create(_ context.Context, d *entity.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, d)
	return nil
}

func (m *memDecisions) LatestByFlight(_ context.Context, flightID string) (*entity.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].FlightID == flightID {
			return m.items[i], nil
		}
	}
	return nil, nil
}

func (m *memDecisions) ListRecent(_ context.Context, limit int) ([]*entity.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*entity.Decision
	for i := len(m.items) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, m.items[i])
	}
	return res, nil
}

func (m *memDecisions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

type memJobs struct {
	mu       sync.Mutex
	jobs     []*entity.NotificationJob
	now      func() time.Time
	claimErr error
	lostIDs  map[string]bool
	// maxInserts fails inserts once that many jobs are stored; zero means no limit
	maxInserts int
}

func newMemJobs() *memJobs {
	return &memJobs{now: time.Now, lostIDs: map[string]bool{}}
}

func (m *memJobs) TryInsert(_ context.Context, job *entity.NotificationJob) (repository.InsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxInserts > 0 && len(m.jobs) >= m.maxInserts {
		return 0, errors.New("connection reset")
	}
	for _, j := range m.jobs {
		if j.IdempotencyKey == job.IdempotencyKey {
			return repository.AlreadyExists, nil
		}
	}
	cp := *job
	m.jobs = append(m.jobs, &cp)
	return repository.Inserted, nil
}

func (m *memJobs) FindDue(_ context.Context, limit int) ([]*entity.NotificationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []*entity.NotificationJob
	for _, j := range m.jobs {
		if j.Status == entity.JobPending || j.Status == entity.JobRetrying {
			cp := *j
			due = append(due, &cp)
		}
	}
	sort.SliceStable(due, func(a, b int) bool { return due[a].CreatedAt.Before(due[b].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memJobs) Claim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if m.lostIDs[id] {
		return false, nil
	}
	j := m.find(id)
	if j == nil || (j.Status != entity.JobPending && j.Status != entity.JobRetrying) {
		return false, nil
	}
	j.Status = entity.JobProcessing
	j.UpdatedAt = m.now()
	return true, nil
}

func (m *memJobs) Complete(ctx context.Context, id string, update repository.JobUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j := m.find(id)
	if j == nil {
		return errors.New("job not found")
	}
	j.Status = update.Status
	j.RetryCount = update.RetryCount
	j.ErrorMessage = update.ErrorMessage
	j.UpdatedAt = m.now()
	return nil
}

func (m *memJobs) ResetStaleClaims(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, j := range m.jobs {
		if j.Status == entity.JobProcessing && j.UpdatedAt.Before(olderThan) {
			j.Status = entity.JobRetrying
			n++
		}
	}
	return n, nil
}

func (m *memJobs) HasSentSince(_ context.Context, flightID string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.FlightID == flightID && j.Status == entity.JobSent && !j.UpdatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memJobs) ListRecent(_ context.Context, limit int) ([]*entity.NotificationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*entity.NotificationJob
	for i := len(m.jobs) - 1; i >= 0 && len(res) < limit; i-- {
		cp := *m.jobs[i]
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memJobs) find(id string) *entity.NotificationJob {
	for _, j := range m.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (m *memJobs) get(id string) entity.NotificationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.find(id)
}

func (m *memJobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *memJobs) byStatus(status entity.JobStatus) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, j := range m.jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}

type memLogs struct {
	mu    sync.Mutex
	items []*entity.NotificationLog
}

func (m *memLogs) Append(ctx context.Context, l *entity.NotificationLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, l)
	return nil
}

func (m *memLogs) ListRecent(_ context.Context, limit int) ([]*entity.NotificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*entity.NotificationLog
	for i := len(m.items) - 1; i >= 0 && len(res) < limit; i-- {
		res = append(res, m.items[i])
	}
	return res, nil
}

type memOverrides struct {
	items []*entity.AdminOverride
}

func (m *memOverrides) Create(_ context.Context, o *entity.AdminOverride) error {
	m.items = append(m.items, o)
	return nil
}

// scriptedNotifier fails the first failures calls, then succeeds
type scriptedNotifier struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    []repository.Delivery
	// onSend runs before each send
	onSend func(ctx context.Context) error
}

func (n *scriptedNotifier) Send(ctx context.Context, d repository.Delivery) error {
	if n.onSend != nil {
		if err := n.onSend(ctx); err != nil {
			n.mu.Lock()
			n.calls = append(n.calls, d)
			n.mu.Unlock()
			return err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, d)
	if n.err != nil {
		return n.err
	}
	if n.failures > 0 {
		n.failures--
		return errors.New("gateway unavailable")
	}
	return nil
}

func (n *scriptedNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type harness struct {
	flights      *memFlights
	bookings     *memBookings
	decisions    *memDecisions
	jobs         *memJobs
	logs         *memLogs
	overrides    *memOverrides
	notifier     *scriptedNotifier
	clock        time.Time
	queue        *JobQueue
	cooldown     *CooldownGuard
	orchestrator *Orchestrator
	override     *AdminOverride
	flightSvc    *FlightService
}

func newHarness(t *testing.T, bookings []*entity.BookingWithPassenger, flights ...entity.Flight) *harness {
	t.Helper()
	h := &harness{
		flights:   newMemFlights(flights...),
		bookings:  &memBookings{bookings: bookings},
		decisions: &memDecisions{},
		jobs:      newMemJobs(),
		logs:      &memLogs{},
		overrides: &memOverrides{},
		notifier:  &scriptedNotifier{},
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return h.clock }
	h.jobs.now = now

	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	log := logger.NewNopLogger()

	notifiers := map[entity.Channel]repository.Notifier{}
	for _, ch := range entity.FanOutChannels {
		notifiers[ch] = h.notifier
	}
	dispatcher := NewDispatcher(notifiers, DispatcherOptions{SendTimeout: time.Second}, m, log)

	h.queue = NewJobQueue(h.jobs, h.bookings, h.logs, dispatcher, JobQueueOptions{}, m, log)
	h.queue.now = now
	h.cooldown = NewCooldownGuard(h.jobs)
	h.cooldown.now = now

	h.orchestrator = NewOrchestrator(h.bookings, h.decisions, h.cooldown, NewDecisionEngine(), h.queue, m, log)
	h.orchestrator.now = now

	h.override = NewAdminOverride(h.flights, h.bookings, h.decisions, h.overrides, h.cooldown, h.queue, log)
	h.override.now = now

	h.flightSvc = NewFlightService(h.flights, h.orchestrator, log)
	h.flightSvc.now = now
	return h
}

func (h *harness) advance(d time.Duration) {
	h.clock = h.clock.Add(d)
}

func testBookings(flightID string, n int) []*entity.BookingWithPassenger {
	res := make([]*entity.BookingWithPassenger, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("booking-%03d", i)
		res = append(res, &entity.BookingWithPassenger{
			Booking: entity.Booking{ID: id, FlightID: flightID, PassengerID: "p-" + id},
			Passenger: entity.Passenger{
				ID:                "p-" + id,
				Name:              "Passenger " + id,
				Email:             id + "@example.com",
				PhoneNumber:       fmt.Sprintf("+1555%07d", i),
				PreferredLanguage: "en",
			},
		})
	}
	return res
}
