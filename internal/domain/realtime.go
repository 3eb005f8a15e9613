package domain

import (
	"strings"
	"time"
)

// LiveStatus is a provider-pushed delivery sub-state. It is finer
// grained than QueueStatus and never persisted.
type LiveStatus string

const (
	LiveReading     LiveStatus = "reading"
	LiveWaitingRate LiveStatus = "waiting_rate"
	LiveTyping      LiveStatus = "typing"
	LiveSending     LiveStatus = "sending"
	LiveSent        LiveStatus = "sent"
)

// StatusEvent is one frame from the gateway's push stream.
// Timestamp is unix milliseconds as emitted by the provider.
type StatusEvent struct {
	Type      string      `json:"type"`
	Session   SessionType `json:"session"`
	ChatID    string      `json:"chatId"`
	Status    LiveStatus  `json:"status"`
	Timestamp int64       `json:"timestamp"`
}

// EventTypeMessageStatus is the only frame type the bridge acts on.
const EventTypeMessageStatus = "message_status"

// RealtimeStatusEntry is the latest known live status for one chat.
type RealtimeStatusEntry struct {
	Status    LiveStatus  `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Session   SessionType `json:"session"`
}

const chatIDSuffix = "@c.us"

// ChatIDFor derives the provider chat identifier from a phone number.
// The gateway addresses chats by bare digits, so everything that is
// not a digit (spaces, dashes, a leading +) is stripped first.
func ChatIDFor(phoneNumber string) string {
	var b strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String() + chatIDSuffix
}
