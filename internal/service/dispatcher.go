package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// QueueStore is the slice of the queue repository the dispatcher needs.
type QueueStore interface {
	Enqueue(
		ctx context.Context,
		session domain.SessionType,
		recipientNumber, messageBody string,
	) (*domain.QueuedMessage, error)
}

// bodyComposer matches Composer.Compose.
type bodyComposer interface {
	Compose(ctx context.Context, bodyTemplate string, r domain.Recipient) string
}

var (
	ErrEmptyBody         = errors.New("message body is empty")
	ErrNoRecipients      = errors.New("recipient list is empty")
	ErrDispatchInFlight  = errors.New("a dispatch batch is already in flight")
	ErrNoBatchDispatched = errors.New("no dispatch batch has run yet")
)

// Dispatcher turns a (body, recipients) pair into queue rows, one
// enqueue per recipient, strictly in input order. The destination is a
// single rate-limited WhatsApp session per sender account, so the loop
// is sequential on purpose; do not parallelize it.
type Dispatcher struct {
	composer          bodyComposer
	queue             QueueStore
	settleDelay       time.Duration
	bulkLinkThreshold int

	mu       sync.Mutex
	inFlight bool
	progress domain.BatchProgress
	done     chan struct{}
}

func NewDispatcher(
	composer bodyComposer,
	queue QueueStore,
	settleDelay time.Duration,
	bulkLinkThreshold int,
) *Dispatcher {
	return &Dispatcher{
		composer:          composer,
		queue:             queue,
		settleDelay:       settleDelay,
		bulkLinkThreshold: bulkLinkThreshold,
	}
}

// BulkLinkWarning is the advisory preflight check: resolving a link
// for many guests in one batch has cost and rate implications, so the
// caller should warn before starting. It never blocks a dispatch.
func (d *Dispatcher) BulkLinkWarning(body string, recipientCount int) bool {
	return ContainsLink(body) && recipientCount > d.bulkLinkThreshold
}

// Start begins one batch and returns its id immediately; the loop runs
// in the background on ctx (callers pass the application context, not
// the request's). While a batch is in flight a second Start is refused,
// which makes a double-submit from the admin UI a no-op.
func (d *Dispatcher) Start(ctx context.Context, body string, recipients []domain.Recipient) (string, error) {
	if body == "" {
		return "", ErrEmptyBody
	}
	if len(recipients) == 0 {
		return "", ErrNoRecipients
	}

	d.mu.Lock()
	if d.inFlight {
		d.mu.Unlock()
		return "", ErrDispatchInFlight
	}

	batchID := uuid.NewString()
	d.inFlight = true
	d.progress = domain.BatchProgress{
		BatchID:   batchID,
		Total:     len(recipients),
		StartedAt: time.Now(),
	}
	d.done = make(chan struct{})
	d.mu.Unlock()

	logger.Infof("Dispatch batch %s started (%d recipients)", batchID, len(recipients))

	go d.run(ctx, body, recipients)

	return batchID, nil
}

// run processes recipients one by one. A failing recipient is counted
// and logged, never allowed to abort the batch.
func (d *Dispatcher) run(ctx context.Context, body string, recipients []domain.Recipient) {
	for _, r := range recipients {
		d.mu.Lock()
		d.progress.Current++
		d.mu.Unlock()

		composed := d.composer.Compose(ctx, body, r)
		session := domain.SessionFor(r.Origin)

		_, err := d.queue.Enqueue(ctx, session, r.PhoneNumber, composed)

		d.mu.Lock()
		if err != nil {
			d.progress.Failed++
			logger.Errorf("Failed to enqueue message for %s (%s): %v", r.Name, r.PhoneNumber, err)
		} else {
			d.progress.Succeeded++
		}
		d.mu.Unlock()
	}

	// Short settle interval so observers see the final counters before
	// the batch flips to done. UX courtesy, not a correctness need.
	if d.settleDelay > 0 {
		time.Sleep(d.settleDelay)
	}

	d.mu.Lock()
	now := time.Now()
	d.progress.Done = true
	d.progress.FinishedAt = &now
	d.inFlight = false
	final := d.progress
	done := d.done
	d.mu.Unlock()

	logger.Infof("Dispatch batch %s completed: %d succeeded, %d failed",
		final.BatchID, final.Succeeded, final.Failed)

	close(done)
}

// Progress returns a snapshot of the in-flight (or most recent) batch.
func (d *Dispatcher) Progress() (domain.BatchProgress, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.progress.BatchID == "" {
		return domain.BatchProgress{}, ErrNoBatchDispatched
	}

	return d.progress, nil
}

// InFlight reports whether a batch is currently running.
func (d *Dispatcher) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight
}

// Done returns a channel closed when the current batch finishes. It is
// nil before the first Start.
func (d *Dispatcher) Done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.done
}
