package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// BridgeState is the lifecycle of the single push-stream connection.
// An errored connection is terminal for that bridge instance: the
// durable queue poller covers missed events, so the bridge does not
// reconnect on its own.
type BridgeState string

const (
	StateDisconnected BridgeState = "disconnected"
	StateConnected    BridgeState = "connected"
	StateError        BridgeState = "error"
)

// Bridge consumes the gateway's server-sent event stream and keeps the
// latest transient delivery status per chat. Only the newest entry per
// chat is retained; there is no buffering or replay.
type Bridge struct {
	httpClient *resty.Client
	eventsURL  string

	mu       sync.RWMutex
	state    BridgeState
	statuses map[string]domain.RealtimeStatusEntry
}

func NewBridge(eventsURL, apiKey string) *Bridge {
	// No client timeout: the stream stays open until teardown.
	client := resty.New().
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		SetHeader("X-Api-Key", apiKey)

	return &Bridge{
		httpClient: client,
		eventsURL:  eventsURL,
		state:      StateDisconnected,
		statuses:   make(map[string]domain.RealtimeStatusEntry),
	}
}

// Run opens the stream and consumes it until ctx is cancelled or the
// stream breaks. Cancellation is a clean teardown (state returns to
// disconnected); any stream failure moves the bridge to the terminal
// error state and is returned.
func (b *Bridge) Run(ctx context.Context) error {
	resp, err := b.httpClient.R().
		SetContext(ctx).
		Get(b.eventsURL)
	if err != nil {
		b.setState(StateError)
		return fmt.Errorf("failed to open event stream: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		b.setState(StateError)
		return fmt.Errorf("event stream returned status %d", resp.StatusCode())
	}

	b.setState(StateConnected)
	logger.Infof("Realtime bridge connected to %s", b.eventsURL)

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event domain.StatusEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			logger.Warnf("Realtime bridge dropped unparsable frame: %v", err)
			continue
		}

		b.handleEvent(event)
	}

	if ctx.Err() != nil {
		b.setState(StateDisconnected)
		logger.Infof("Realtime bridge closed")
		return nil
	}

	b.setState(StateError)
	if err := scanner.Err(); err != nil {
		logger.Errorf("Realtime bridge stream error: %v", err)
		return fmt.Errorf("event stream failed: %w", err)
	}

	logger.Errorf("Realtime bridge stream ended unexpectedly")
	return fmt.Errorf("event stream ended unexpectedly")
}

// handleEvent upserts the status map. Frames of any other type are
// ignored; a newer frame for the same chat overwrites the older one.
func (b *Bridge) handleEvent(event domain.StatusEvent) {
	if event.Type != domain.EventTypeMessageStatus {
		return
	}

	b.mu.Lock()
	b.statuses[event.ChatID] = domain.RealtimeStatusEntry{
		Status:    event.Status,
		Timestamp: time.UnixMilli(event.Timestamp),
		Session:   event.Session,
	}
	b.mu.Unlock()
}

// Lookup returns the latest live entry for a chat, if one arrived.
func (b *Bridge) Lookup(chatID string) (domain.RealtimeStatusEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.statuses[chatID]
	return entry, ok
}

// Snapshot copies the whole status map for read-only consumers.
func (b *Bridge) Snapshot() map[string]domain.RealtimeStatusEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[string]domain.RealtimeStatusEntry, len(b.statuses))
	for chatID, entry := range b.statuses {
		snapshot[chatID] = entry
	}
	return snapshot
}

func (b *Bridge) State() BridgeState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Bridge) setState(state BridgeState) {
	b.mu.Lock()
	b.state = state
	b.mu.Unlock()
}
