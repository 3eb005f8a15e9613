package service

import (
	"time"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

// StatusLookup finds the live status entry for a chat id, if any.
// The realtime bridge's Lookup method satisfies it.
type StatusLookup func(chatID string) (domain.RealtimeStatusEntry, bool)

// DisplayStatus is the single renderable status for one queued
// message, merged from the live stream and the durable row.
type DisplayStatus struct {
	Label   string             `json:"label"`
	Live    bool               `json:"live"`
	Session domain.SessionType `json:"session"`
	Detail  string             `json:"detail,omitempty"`
	At      *time.Time         `json:"at,omitempty"`
}

// Reconcile merges the two status sources for display. The live entry
// is fresher and finer grained, so it wins whenever one exists; the
// durable status is the fallback. Pure: neither source is mutated, and
// the result must be recomputed on every read.
func Reconcile(msg domain.QueuedMessage, lookup StatusLookup) DisplayStatus {
	chatID := domain.ChatIDFor(msg.RecipientNumber)

	if entry, ok := lookup(chatID); ok {
		at := entry.Timestamp
		return DisplayStatus{
			Label:   string(entry.Status),
			Live:    true,
			Session: entry.Session,
			At:      &at,
		}
	}

	display := DisplayStatus{
		Label:   string(msg.Status),
		Session: msg.SessionType,
		At:      msg.SentAt,
	}
	if msg.ErrorLog != nil {
		display.Detail = *msg.ErrorLog
	}

	return display
}
