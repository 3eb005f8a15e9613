package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

// Narrow interfaces so the worker is testable without MySQL or a
// running gateway.
type workerQueue interface {
	GetDue(ctx context.Context, limit int) ([]domain.QueuedMessage, error)
	MarkProcessing(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, providerMessageID string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, errorLog string) error
	MarkSkipped(ctx context.Context, id int64, reason string) error
	GetStats(ctx context.Context) (*domain.QueueStats, error)
}

type gatewayClient interface {
	SendText(ctx context.Context, session domain.SessionType, chatID, text string) (string, error)
}

// QueueWorker transmits due queue rows through the WhatsApp gateway,
// one at a time with a pause in between. Each sender session is a
// stateful, rate-limited WhatsApp account; concurrent sends would race
// its rate limiter, so the drain is sequential by contract.
type QueueWorker struct {
	queue   workerQueue
	gateway gatewayClient
	config  environments.WorkerConfig
}

func NewQueueWorker(queue workerQueue, gateway gatewayClient, config environments.WorkerConfig) *QueueWorker {
	return &QueueWorker{
		queue:   queue,
		gateway: gateway,
		config:  config,
	}
}

// ProcessDueMessages drains one batch of due rows in schedule order.
func (w *QueueWorker) ProcessDueMessages(ctx context.Context) ([]domain.SendResult, error) {
	messages, err := w.queue.GetDue(ctx, w.config.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get due messages: %w", err)
	}

	if len(messages) == 0 {
		logger.Debugf("No due messages to transmit")
		return nil, nil
	}

	logger.Infof("Transmitting %d due messages", len(messages))

	results := make([]domain.SendResult, 0, len(messages))

	for i, msg := range messages {
		results = append(results, w.transmit(ctx, &msg))

		// Pause between sends, not after the last one.
		if w.config.SendPause > 0 && i < len(messages)-1 {
			select {
			case <-time.After(w.config.SendPause):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}

	return results, nil
}

func (w *QueueWorker) transmit(ctx context.Context, msg *domain.QueuedMessage) domain.SendResult {
	result := domain.SendResult{
		QueueID: msg.ID,
		SentAt:  time.Now(),
	}

	chatID := domain.ChatIDFor(msg.RecipientNumber)
	if chatID == "@c.us" {
		reason := fmt.Sprintf("recipient number %q has no digits", msg.RecipientNumber)
		logger.Warnf("Skipping message %d: %s", msg.ID, reason)

		result.Skipped = true
		if markErr := w.queue.MarkSkipped(ctx, msg.ID, reason); markErr != nil {
			logger.Errorf("Failed to mark message %d as skipped: %v", msg.ID, markErr)
		}
		return result
	}

	if len(msg.MessageBody) > w.config.MaxBodyBytes {
		logger.Warnf("Message %d exceeds max body size (%d > %d), truncating",
			msg.ID, len(msg.MessageBody), w.config.MaxBodyBytes)
		msg.MessageBody = msg.MessageBody[:w.config.MaxBodyBytes]
	}

	if err := w.queue.MarkProcessing(ctx, msg.ID); err != nil {
		// Another instance or a manual edit took the row; leave it alone.
		logger.Warnf("Could not claim message %d: %v", msg.ID, err)
		result.Error = err
		return result
	}

	providerID, err := w.gateway.SendText(ctx, msg.SessionType, chatID, msg.MessageBody)
	if err != nil {
		logger.Errorf("Failed to send message %d via %s session: %v", msg.ID, msg.SessionType, err)
		result.Error = err

		if markErr := w.queue.MarkFailed(ctx, msg.ID, err.Error()); markErr != nil {
			logger.Errorf("Failed to mark message %d as failed: %v", msg.ID, markErr)
		}
		return result
	}

	if err := w.queue.MarkSent(ctx, msg.ID, providerID, result.SentAt); err != nil {
		logger.Errorf("Failed to mark message %d as sent: %v", msg.ID, err)
		result.Error = err
		return result
	}

	logger.Infof("Sent message %d via %s session (providerMessageId: %s)", msg.ID, msg.SessionType, providerID)

	result.Success = true
	result.ProviderMessageID = providerID

	return result
}

// RefreshStats re-reads the durable queue counters. The scheduler
// calls this every tick as a safety net against missed push events; it
// only touches the durable layer, never the bridge's live map.
func (w *QueueWorker) RefreshStats(ctx context.Context) (*domain.QueueStats, error) {
	return w.queue.GetStats(ctx)
}
