package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/internal/domain"
)

//
// Test fakes - only for this file.
//

type fakeWorkerQueue struct {
	due []domain.QueuedMessage

	markProcessingCalls []int64
	markSentCalls       []markSentCall
	markFailedCalls     []markFailedCall
	markSkippedCalls    []int64
	stats               domain.QueueStats
}

type markSentCall struct {
	id         int64
	providerID string
	sentAt     time.Time
}

type markFailedCall struct {
	id       int64
	errorLog string
}

func (q *fakeWorkerQueue) GetDue(ctx context.Context, limit int) ([]domain.QueuedMessage, error) {
	if len(q.due) <= limit {
		return q.due, nil
	}
	return q.due[:limit], nil
}

func (q *fakeWorkerQueue) MarkProcessing(ctx context.Context, id int64) error {
	q.markProcessingCalls = append(q.markProcessingCalls, id)
	return nil
}

func (q *fakeWorkerQueue) MarkSent(ctx context.Context, id int64, providerMessageID string, sentAt time.Time) error {
	q.markSentCalls = append(q.markSentCalls, markSentCall{id: id, providerID: providerMessageID, sentAt: sentAt})
	return nil
}

func (q *fakeWorkerQueue) MarkFailed(ctx context.Context, id int64, errorLog string) error {
	q.markFailedCalls = append(q.markFailedCalls, markFailedCall{id: id, errorLog: errorLog})
	return nil
}

func (q *fakeWorkerQueue) MarkSkipped(ctx context.Context, id int64, reason string) error {
	q.markSkippedCalls = append(q.markSkippedCalls, id)
	return nil
}

func (q *fakeWorkerQueue) GetStats(ctx context.Context) (*domain.QueueStats, error) {
	return &q.stats, nil
}

type fakeGateway struct {
	shouldFail bool
	providerID string

	lastSession domain.SessionType
	lastChatID  string
	lastText    string
	sendCount   int
}

func (g *fakeGateway) SendText(
	ctx context.Context,
	session domain.SessionType,
	chatID, text string,
) (string, error) {
	g.sendCount++
	g.lastSession = session
	g.lastChatID = chatID
	g.lastText = text

	if g.shouldFail {
		return "", fmt.Errorf("simulated gateway error")
	}

	providerID := g.providerID
	if providerID == "" {
		providerID = "wa-msg-id"
	}
	return providerID, nil
}

func workerConfig() environments.WorkerConfig {
	return environments.WorkerConfig{
		BatchSize:    10,
		Interval:     time.Minute,
		SendPause:    0, // no pauses in tests
		MaxBodyBytes: 4096,
	}
}

//
// Tests
//

func TestProcessDueMessages_SuccessFlow(t *testing.T) {
	ctx := context.Background()

	queue := &fakeWorkerQueue{
		due: []domain.QueuedMessage{
			{
				ID:              1,
				SessionType:     domain.SessionBride,
				RecipientNumber: "+393334445566",
				MessageBody:     "Hi Giulia!",
				Status:          domain.StatusPending,
			},
		},
	}
	gateway := &fakeGateway{providerID: "wa-123"}

	worker := NewQueueWorker(queue, gateway, workerConfig())

	results, err := worker.ProcessDueMessages(ctx)
	if err != nil {
		t.Fatalf("ProcessDueMessages returned error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	res := results[0]
	if !res.Success {
		t.Fatalf("expected Success=true, got false (error: %v)", res.Error)
	}
	if res.ProviderMessageID != "wa-123" {
		t.Fatalf("expected ProviderMessageID %q, got %q", "wa-123", res.ProviderMessageID)
	}

	if gateway.lastSession != domain.SessionBride {
		t.Errorf("expected bride session, got %q", gateway.lastSession)
	}
	if gateway.lastChatID != "393334445566@c.us" {
		t.Errorf("expected chatId %q, got %q", "393334445566@c.us", gateway.lastChatID)
	}

	if len(queue.markProcessingCalls) != 1 || queue.markProcessingCalls[0] != 1 {
		t.Fatalf("expected MarkProcessing for id 1, got %v", queue.markProcessingCalls)
	}
	if len(queue.markSentCalls) != 1 || queue.markSentCalls[0].providerID != "wa-123" {
		t.Fatalf("expected one MarkSent with provider id wa-123, got %v", queue.markSentCalls)
	}
}

func TestProcessDueMessages_GatewayFailureMarksFailed(t *testing.T) {
	ctx := context.Background()

	queue := &fakeWorkerQueue{
		due: []domain.QueuedMessage{
			{ID: 1, SessionType: domain.SessionGroom, RecipientNumber: "+393331112233", MessageBody: "Hi!"},
		},
	}
	gateway := &fakeGateway{shouldFail: true}

	worker := NewQueueWorker(queue, gateway, workerConfig())

	results, err := worker.ProcessDueMessages(ctx)
	if err != nil {
		t.Fatalf("ProcessDueMessages returned error: %v", err)
	}

	if len(results) != 1 || results[0].Success {
		t.Fatalf("expected one failed result, got %+v", results)
	}

	if len(queue.markFailedCalls) != 1 {
		t.Fatalf("expected one MarkFailed call, got %d", len(queue.markFailedCalls))
	}
	if queue.markFailedCalls[0].errorLog == "" {
		t.Fatalf("expected error log to be recorded")
	}
	if len(queue.markSentCalls) != 0 {
		t.Fatalf("expected no MarkSent calls, got %d", len(queue.markSentCalls))
	}
}

func TestProcessDueMessages_DigitlessNumberSkipped(t *testing.T) {
	ctx := context.Background()

	queue := &fakeWorkerQueue{
		due: []domain.QueuedMessage{
			{ID: 1, SessionType: domain.SessionGroom, RecipientNumber: "n/a", MessageBody: "Hi!"},
			{ID: 2, SessionType: domain.SessionGroom, RecipientNumber: "+393331112233", MessageBody: "Hi!"},
		},
	}
	gateway := &fakeGateway{}

	worker := NewQueueWorker(queue, gateway, workerConfig())

	results, err := worker.ProcessDueMessages(ctx)
	if err != nil {
		t.Fatalf("ProcessDueMessages returned error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Skipped {
		t.Fatalf("expected first result skipped")
	}
	if !results[1].Success {
		t.Fatalf("expected second result sent, got %+v", results[1])
	}

	if len(queue.markSkippedCalls) != 1 || queue.markSkippedCalls[0] != 1 {
		t.Fatalf("expected MarkSkipped for id 1, got %v", queue.markSkippedCalls)
	}
	if gateway.sendCount != 1 {
		t.Fatalf("expected one gateway send, got %d", gateway.sendCount)
	}
}

func TestProcessDueMessages_OversizedBodyTruncated(t *testing.T) {
	ctx := context.Background()

	cfg := workerConfig()
	cfg.MaxBodyBytes = 10

	queue := &fakeWorkerQueue{
		due: []domain.QueuedMessage{
			{ID: 1, SessionType: domain.SessionGroom, RecipientNumber: "+39333", MessageBody: "0123456789abcdef"},
		},
	}
	gateway := &fakeGateway{}

	worker := NewQueueWorker(queue, gateway, cfg)

	if _, err := worker.ProcessDueMessages(ctx); err != nil {
		t.Fatalf("ProcessDueMessages returned error: %v", err)
	}

	if gateway.lastText != "0123456789" {
		t.Fatalf("expected truncated body %q, got %q", "0123456789", gateway.lastText)
	}
}

func TestRefreshStats_PassesThrough(t *testing.T) {
	queue := &fakeWorkerQueue{
		stats: domain.QueueStats{Pending: 3, Sent: 5, Failed: 1},
	}

	worker := NewQueueWorker(queue, &fakeGateway{}, workerConfig())

	stats, err := worker.RefreshStats(context.Background())
	if err != nil {
		t.Fatalf("RefreshStats returned error: %v", err)
	}
	if stats.Pending != 3 || stats.Sent != 5 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
