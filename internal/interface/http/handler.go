package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/usecase"
	"flightalert-service/pkg/logger"
	"flightalert-service/pkg/response"
)

// FlightUpdater applies a flight update and runs it through the orchestrator
type FlightUpdater interface {
	UpdateFlight(ctx context.Context, id string, patch entity.FlightPatch, simulate bool) (*usecase.UpdateResult, error)
}

// FlightLister lists stored flights
type FlightLister interface {
	List(ctx context.Context) ([]*entity.Flight, error)
}

// Overrider forces notifications for a flight
type Overrider interface {
	Override(ctx context.Context, flightID, reason, actor string) (usecase.OverrideResult, error)
}

// HistoryReader serves the audit views
type HistoryReader interface {
	Recent(ctx context.Context, limit int) (*usecase.History, error)
}

// JobProcessor drains the notification queue once
type JobProcessor interface {
	ProcessPendingJobs(ctx context.Context) (usecase.BatchReport, error)
}

// FlightSyncer pulls live flight state from the aviation provider
type FlightSyncer interface {
	Sync(ctx context.Context, simulate bool) (*usecase.SyncReport, error)
}

// InboxReader lists a passenger's in-app messages
type InboxReader interface {
	ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*entity.InAppMessage, error)
}

// AlertHandler serves the flight alert HTTP API
type AlertHandler struct {
	flights  FlightUpdater
	lister   FlightLister
	override Overrider
	history  HistoryReader
	jobs     JobProcessor
	sync     FlightSyncer
	inbox    InboxReader
	logger   logger.Logger
}

// NewAlertHandler creates the HTTP handler
func NewAlertHandler(
	flights FlightUpdater,
	lister FlightLister,
	override Overrider,
	history HistoryReader,
	jobs JobProcessor,
	sync FlightSyncer,
	inbox InboxReader,
	logger logger.Logger,
) *AlertHandler {
	return &AlertHandler{
		flights:  flights,
		lister:   lister,
		override: override,
		history:  history,
		jobs:     jobs,
		sync:     sync,
		inbox:    inbox,
		logger:   logger,
	}
}

// overrideRequest is the body of POST /api/admin/override
type overrideRequest struct {
	FlightID string `json:"flightId"`
	Reason   string `json:"reason"`
}

// batchSummary is the JSON view of one worker pass
type batchSummary struct {
	Fetched  int `json:"fetched"`
	Sent     int `json:"sent"`
	Retrying int `json:"retrying"`
	Failed   int `json:"failed"`
	Blocked  int `json:"blocked"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

func summarize(report usecase.BatchReport) batchSummary {
	s := batchSummary{
		Fetched:  report.Fetched,
		Sent:     report.Count(entity.JobSent),
		Retrying: report.Count(entity.JobRetrying),
		Failed:   report.Count(entity.JobFailed),
		Blocked:  report.Count(entity.JobBlocked),
	}
	for _, o := range report.Outcomes {
		switch {
		case o.Skipped:
			s.Skipped++
		case o.Err != nil:
			s.Errors++
		}
	}
	return s
}

// Health reports liveness
func (h *AlertHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"health": "ok"})
}

// ListFlights returns every stored flight
func (h *AlertHandler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.lister.List(r.Context())
	if err != nil {
		h.fail(w, "list flights", err)
		return
	}
	response.JSON(w, http.StatusOK, flights)
}

// UpdateFlight applies a flight patch. ?simulate=true evaluates without side effects.
func (h *AlertHandler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch entity.FlightPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.flights.UpdateFlight(r.Context(), id, patch, simulateParam(r))
	if err != nil {
		h.fail(w, "update flight", err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// Override forces EMAIL notifications for a flight
func (h *AlertHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.override.Override(r.Context(), req.FlightID, req.Reason, ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, "admin override", err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

// AlertHistory lists recent decisions, jobs and delivery attempts
func (h *AlertHandler) AlertHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.history.Recent(r.Context(), atoi(r.URL.Query().Get("limit")))
	if err != nil {
		h.fail(w, "alert history", err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}

// ProcessJobs runs one worker pass on demand
func (h *AlertHandler) ProcessJobs(w http.ResponseWriter, r *http.Request) {
	report, err := h.jobs.ProcessPendingJobs(r.Context())
	if err != nil {
		h.fail(w, "process jobs", err)
		return
	}
	response.JSON(w, http.StatusOK, summarize(report))
}

// SyncFlights pulls live state for every stored flight
func (h *AlertHandler) SyncFlights(w http.ResponseWriter, r *http.Request) {
	report, err := h.sync.Sync(r.Context(), simulateParam(r))
	if err != nil {
		h.fail(w, "sync flights", err)
		return
	}
	response.JSON(w, http.StatusOK, report)
}

// PassengerInbox lists a passenger's in-app messages, newest first
func (h *AlertHandler) PassengerInbox(w http.ResponseWriter, r *http.Request) {
	passengerID := chi.URLParam(r, "id")
	limit := usecase.NormalizeLimit(atoi(r.URL.Query().Get("limit")))

	messages, err := h.inbox.ListByPassenger(r.Context(), passengerID, limit)
	if err != nil {
		h.fail(w, "passenger inbox", err)
		return
	}
	response.JSON(w, http.StatusOK, messages)
}

func (h *AlertHandler) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "operation", op, "error", err)
		response.Error(w, status, "internal error")
		return
	}
	response.Error(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrFlightNotFound), errors.Is(err, entity.ErrBookingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func simulateParam(r *http.Request) bool {
	simulate, _ := strconv.ParseBool(r.URL.Query().Get("simulate"))
	return simulate
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
