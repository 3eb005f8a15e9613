package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

// fakeQueueStore records enqueue calls in order and can fail or block
// selected recipients.
type fakeQueueStore struct {
	mu        sync.Mutex
	calls     []enqueueCall
	failOn    map[string]error
	blockOn   string
	unblock   chan struct{}
	blockedAt chan struct{}
}

type enqueueCall struct {
	session domain.SessionType
	number  string
	body    string
}

func (f *fakeQueueStore) Enqueue(
	ctx context.Context,
	session domain.SessionType,
	recipientNumber, messageBody string,
) (*domain.QueuedMessage, error) {
	if f.blockOn == recipientNumber && f.unblock != nil {
		f.blockedAt <- struct{}{}
		<-f.unblock
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failOn[recipientNumber]; ok {
		return nil, err
	}

	f.calls = append(f.calls, enqueueCall{session: session, number: recipientNumber, body: messageBody})
	return &domain.QueuedMessage{
		ID:              int64(len(f.calls)),
		SessionType:     session,
		RecipientNumber: recipientNumber,
		MessageBody:     messageBody,
		Status:          domain.StatusPending,
	}, nil
}

func (f *fakeQueueStore) recorded() []enqueueCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]enqueueCall(nil), f.calls...)
}

// passthroughComposer skips link handling so dispatcher tests stay
// focused on the loop itself.
type passthroughComposer struct{}

func (passthroughComposer) Compose(ctx context.Context, bodyTemplate string, r domain.Recipient) string {
	return bodyTemplate + " -> " + r.Name
}

func newTestRecipients(n int) []domain.Recipient {
	recipients := make([]domain.Recipient, 0, n)
	for i := 0; i < n; i++ {
		recipients = append(recipients, domain.Recipient{
			ID:          int64(i + 1),
			Name:        fmt.Sprintf("Guest %d", i+1),
			Code:        fmt.Sprintf("CODE%d", i+1),
			PhoneNumber: fmt.Sprintf("+39333000%04d", i+1),
			Origin:      domain.OriginGroom,
		})
	}
	return recipients
}

func waitDone(t *testing.T, d *Dispatcher) {
	t.Helper()
	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch batch did not complete in time")
	}
}

func TestDispatcher_RefusesEmptyInput(t *testing.T) {
	d := NewDispatcher(passthroughComposer{}, &fakeQueueStore{}, 0, 5)

	_, err := d.Start(context.Background(), "", newTestRecipients(1))
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = d.Start(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrNoRecipients)

	// A refused start creates no partial state.
	_, err = d.Progress()
	assert.ErrorIs(t, err, ErrNoBatchDispatched)
}

func TestDispatcher_CompletesWithExactCounters(t *testing.T) {
	queue := &fakeQueueStore{}
	d := NewDispatcher(passthroughComposer{}, queue, 0, 5)

	batchID, err := d.Start(context.Background(), "hello", newTestRecipients(4))
	require.NoError(t, err)
	require.NotEmpty(t, batchID)

	waitDone(t, d)

	progress, err := d.Progress()
	require.NoError(t, err)

	assert.True(t, progress.Done)
	assert.Equal(t, 4, progress.Total)
	assert.Equal(t, 4, progress.Current)
	assert.Equal(t, 4, progress.Succeeded)
	assert.Equal(t, 0, progress.Failed)
	assert.NotNil(t, progress.FinishedAt)
}

func TestDispatcher_SequentialInputOrder(t *testing.T) {
	queue := &fakeQueueStore{}
	d := NewDispatcher(passthroughComposer{}, queue, 0, 5)

	recipients := newTestRecipients(5)
	_, err := d.Start(context.Background(), "hello", recipients)
	require.NoError(t, err)

	waitDone(t, d)

	calls := queue.recorded()
	require.Len(t, calls, 5)
	for i, call := range calls {
		assert.Equal(t, recipients[i].PhoneNumber, call.number, "recipient %d out of order", i)
	}
}

func TestDispatcher_PartialFailureKeepsGoing(t *testing.T) {
	recipients := newTestRecipients(3)
	queue := &fakeQueueStore{
		failOn: map[string]error{
			recipients[1].PhoneNumber: fmt.Errorf("enqueue rejected"),
		},
	}
	d := NewDispatcher(passthroughComposer{}, queue, 0, 5)

	_, err := d.Start(context.Background(), "hello", recipients)
	require.NoError(t, err)

	waitDone(t, d)

	progress, err := d.Progress()
	require.NoError(t, err)

	assert.Equal(t, 2, progress.Succeeded)
	assert.Equal(t, 1, progress.Failed)
	assert.Equal(t, 3, progress.Current)

	// Recipient #3 was still attempted after #2 failed.
	calls := queue.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, recipients[2].PhoneNumber, calls[1].number)
}

func TestDispatcher_SessionRouting(t *testing.T) {
	queue := &fakeQueueStore{}
	d := NewDispatcher(passthroughComposer{}, queue, 0, 5)

	recipients := []domain.Recipient{
		{ID: 1, Name: "A", Code: "A1", PhoneNumber: "+391", Origin: domain.OriginGroom},
		{ID: 2, Name: "B", Code: "B1", PhoneNumber: "+392", Origin: domain.OriginBride},
		{ID: 3, Name: "C", Code: "C1", PhoneNumber: "+393", Origin: domain.OriginOther},
	}

	_, err := d.Start(context.Background(), "hello", recipients)
	require.NoError(t, err)

	waitDone(t, d)

	calls := queue.recorded()
	require.Len(t, calls, 3)
	assert.Equal(t, domain.SessionGroom, calls[0].session)
	assert.Equal(t, domain.SessionBride, calls[1].session)
	assert.Equal(t, domain.SessionGroom, calls[2].session)
}

func TestDispatcher_SecondStartWhileInFlightIsRefused(t *testing.T) {
	recipients := newTestRecipients(2)
	queue := &fakeQueueStore{
		blockOn:   recipients[0].PhoneNumber,
		unblock:   make(chan struct{}),
		blockedAt: make(chan struct{}),
	}
	d := NewDispatcher(passthroughComposer{}, queue, 0, 5)

	_, err := d.Start(context.Background(), "hello", recipients)
	require.NoError(t, err)

	// Wait until the loop is mid-batch, then try to start again.
	<-queue.blockedAt
	_, err = d.Start(context.Background(), "hello again", newTestRecipients(2))
	assert.ErrorIs(t, err, ErrDispatchInFlight)

	close(queue.unblock)
	waitDone(t, d)

	// Exactly one batch's worth of enqueue calls happened.
	assert.Len(t, queue.recorded(), 2)

	// Once the batch finished a new one may start.
	_, err = d.Start(context.Background(), "hello", newTestRecipients(1))
	assert.NoError(t, err)
	waitDone(t, d)
}

func TestDispatcher_BulkLinkWarning(t *testing.T) {
	d := NewDispatcher(passthroughComposer{}, &fakeQueueStore{}, 0, 5)

	assert.False(t, d.BulkLinkWarning("Hi {name}", 10))
	assert.False(t, d.BulkLinkWarning("Invitation: {link}", 5))
	assert.True(t, d.BulkLinkWarning("Invitation: {link}", 6))
	assert.True(t, d.BulkLinkWarning("Invitation: [LINK_PENDING]", 6))
}
