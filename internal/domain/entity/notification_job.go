package entity

import "time"

// Channel is a delivery channel for passenger notifications
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelSMS      Channel = "SMS"
	ChannelWhatsApp Channel = "WHATSAPP"
	ChannelInApp    Channel = "IN_APP"
)

// FanOutChannels is the order in which disruption alerts are enqueued per booking
var FanOutChannels = []Channel{ChannelInApp, ChannelEmail, ChannelSMS, ChannelWhatsApp}

// JobStatus is the lifecycle state of a notification job
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobRetrying   JobStatus = "RETRYING"
	JobSent       JobStatus = "SENT"
	JobFailed     JobStatus = "FAILED"
	JobBlocked    JobStatus = "BLOCKED"
)

// MaxRetries is the delivery budget of a job. A job that fails this many times is FAILED.
const MaxRetries = 3

// Payload keys shared by the orchestrator, the override path and the history view
const (
	PayloadMessage      = "message"
	PayloadType         = "type"
	PayloadFlightID     = "flight_id"
	PayloadDecision     = "mcp_decision"
	PayloadRiskScore    = "mcp_risk_score"
	PayloadSeverity     = "mcp_severity"
	PayloadReason       = "mcp_reason"
	PayloadAdminReason  = "admin_reason"
	PayloadFlightNumber = "flight_number"
)

// NotificationJob is a durable unit of delivery work for one booking on one channel
type NotificationJob struct {
	ID             string                 `json:"id"`
	FlightID       string                 `json:"flight_id"`
	BookingID      string                 `json:"booking_id"`
	Channel        Channel                `json:"channel"`
	Status         JobStatus              `json:"status"`
	Payload        map[string]interface{} `json:"payload"`
	IdempotencyKey string                 `json:"idempotency_key"`
	RetryCount     int                    `json:"retry_count"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Message returns the rendered message stored in the payload
func (j *NotificationJob) Message() string {
	if msg, ok := j.Payload[PayloadMessage].(string); ok {
		return msg
	}
	return ""
}

// NotificationLog records the outcome of a single delivery attempt
type NotificationLog struct {
	ID        string                 `bson:"_id,omitempty" json:"id"`
	JobID     string                 `bson:"jobId" json:"job_id"`
	BookingID string                 `bson:"bookingId" json:"booking_id"`
	FlightID  string                 `bson:"flightId" json:"flight_id"`
	Channel   Channel                `bson:"channel" json:"channel"`
	Status    JobStatus              `bson:"status" json:"status"`
	Attempt   int                    `bson:"attempt" json:"attempt"`
	Payload   map[string]interface{} `bson:"payload" json:"payload"`
	Error     string                 `bson:"error,omitempty" json:"error,omitempty"`
	SentAt    time.Time              `bson:"sentAt" json:"sent_at"`
}

// InAppMessage is a notification stored in a passenger's in-app inbox
type InAppMessage struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	PassengerID string    `bson:"passengerId" json:"passenger_id"`
	BookingID   string    `bson:"bookingId" json:"booking_id"`
	Message     string    `bson:"message" json:"message"`
	Type        string    `bson:"type" json:"type"`
	Read        bool      `bson:"read" json:"read"`
	CreatedAt   time.Time `bson:"createdAt" json:"created_at"`
}
