package domain

import "time"

// SessionType identifies which of the two WhatsApp sender accounts
// transmits a message.
type SessionType string

const (
	SessionGroom SessionType = "groom"
	SessionBride SessionType = "bride"
)

// QueueStatus is the durable, persisted status of a queued message.
type QueueStatus string

const (
	StatusPending    QueueStatus = "pending"
	StatusProcessing QueueStatus = "processing"
	StatusSent       QueueStatus = "sent"
	StatusFailed     QueueStatus = "failed"
	StatusSkipped    QueueStatus = "skipped"
)

// QueuedMessage is one durable row of the outbound queue. The body is
// fully resolved at enqueue time and immutable once sent.
type QueuedMessage struct {
	ID                int64       `db:"id" json:"id"`
	SessionType       SessionType `db:"session_type" json:"sessionType"`
	RecipientNumber   string      `db:"recipient_number" json:"recipientNumber"`
	MessageBody       string      `db:"message_body" json:"messageBody"`
	Status            QueueStatus `db:"status" json:"status"`
	Attempts          int         `db:"attempts" json:"attempts"`
	ScheduledFor      time.Time   `db:"scheduled_for" json:"scheduledFor"`
	SentAt            *time.Time  `db:"sent_at" json:"sentAt,omitempty"`
	ErrorLog          *string     `db:"error_log" json:"errorLog,omitempty"`
	ProviderMessageID *string     `db:"provider_message_id" json:"providerMessageId,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updatedAt"`
}

// QueueStats counts queue rows per durable status.
type QueueStats struct {
	Pending    int64 `db:"pending" json:"pending"`
	Processing int64 `db:"processing" json:"processing"`
	Sent       int64 `db:"sent" json:"sent"`
	Failed     int64 `db:"failed" json:"failed"`
	Skipped    int64 `db:"skipped" json:"skipped"`
}

// SendResult is the outcome of one transmission attempt by the queue worker.
type SendResult struct {
	QueueID           int64
	ProviderMessageID string
	Success           bool
	Skipped           bool
	Error             error
	SentAt            time.Time
}
