package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nemocrk/my-wedding-app/internal/domain"
)

// QueueRepository owns the durable outbound queue table.
type QueueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

const queueColumns = `id, session_type, recipient_number, message_body, status, attempts,
		scheduled_for, sent_at, error_log, provider_message_id, created_at, updated_at`

// Enqueue inserts one pending row scheduled for immediate pickup.
func (r *QueueRepository) Enqueue(
	ctx context.Context,
	session domain.SessionType,
	recipientNumber, messageBody string,
) (*domain.QueuedMessage, error) {
	query := `
		INSERT INTO message_queue (session_type, recipient_number, message_body, status, scheduled_for, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`

	result, err := r.db.ExecContext(ctx, query, session, recipientNumber, messageBody)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *QueueRepository) GetByID(ctx context.Context, id int64) (*domain.QueuedMessage, error) {
	query := `SELECT ` + queueColumns + ` FROM message_queue WHERE id = ?`

	var msg domain.QueuedMessage
	if err := r.db.GetContext(ctx, &msg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get queued message: %w", err)
	}

	return &msg, nil
}

// GetDue returns pending rows whose schedule has elapsed, oldest first.
// The worker drains them strictly in this order.
func (r *QueueRepository) GetDue(ctx context.Context, limit int) ([]domain.QueuedMessage, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM message_queue
		WHERE status = 'pending' AND scheduled_for <= CURRENT_TIMESTAMP
		ORDER BY scheduled_for ASC, id ASC
		LIMIT ?
	`

	var messages []domain.QueuedMessage
	if err := r.db.SelectContext(ctx, &messages, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get due messages: %w", err)
	}

	return messages, nil
}

func (r *QueueRepository) MarkProcessing(ctx context.Context, id int64) error {
	query := `
		UPDATE message_queue
		SET status = 'processing', updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark message as processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no pending message found with id %d", id)
	}

	return nil
}

func (r *QueueRepository) MarkSent(ctx context.Context, id int64, providerMessageID string, sentAt time.Time) error {
	query := `
		UPDATE message_queue
		SET status = 'sent', provider_message_id = ?, sent_at = ?, error_log = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, providerMessageID, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark message as sent: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no message found with id %d", id)
	}

	return nil
}

func (r *QueueRepository) MarkFailed(ctx context.Context, id int64, errorLog string) error {
	query := `
		UPDATE message_queue
		SET status = 'failed', error_log = ?, attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, errorLog, id); err != nil {
		return fmt.Errorf("failed to mark message as failed: %w", err)
	}

	return nil
}

// MarkSkipped is terminal: the worker refuses the row (e.g. the number
// has no digits) without counting a delivery attempt.
func (r *QueueRepository) MarkSkipped(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE message_queue
		SET status = 'skipped', error_log = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, reason, id); err != nil {
		return fmt.Errorf("failed to mark message as skipped: %w", err)
	}

	return nil
}

// RetryAllFailed moves every failed row back to pending. Attempts are
// kept so the history of a flaky recipient stays visible.
func (r *QueueRepository) RetryAllFailed(ctx context.Context) (int64, error) {
	query := `
		UPDATE message_queue
		SET status = 'pending',
		    error_log = NULL,
		    scheduled_for = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE status = 'failed'
	`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to retry failed messages: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// ForceSend reschedules one pending or failed row to now so the next
// worker tick picks it up ahead of its original schedule.
func (r *QueueRepository) ForceSend(ctx context.Context, id int64) error {
	query := `
		UPDATE message_queue
		SET status = 'pending',
		    error_log = NULL,
		    scheduled_for = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status IN ('pending', 'failed')
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to force-send message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no pending or failed message found with id %d", id)
	}

	return nil
}

// UpdateMessage edits the body and/or schedule of a row that has not
// been sent yet. Sent bodies are immutable.
func (r *QueueRepository) UpdateMessage(
	ctx context.Context,
	id int64,
	messageBody *string,
	scheduledFor *time.Time,
) (*domain.QueuedMessage, error) {
	if messageBody == nil && scheduledFor == nil {
		return nil, fmt.Errorf("nothing to update")
	}

	query := `UPDATE message_queue SET updated_at = CURRENT_TIMESTAMP`
	args := []any{}

	if messageBody != nil {
		query += `, message_body = ?`
		args = append(args, *messageBody)
	}
	if scheduledFor != nil {
		query += `, scheduled_for = ?`
		args = append(args, *scheduledFor)
	}

	query += ` WHERE id = ? AND status IN ('pending', 'failed')`
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return nil, fmt.Errorf("no editable message found with id %d", id)
	}

	return r.GetByID(ctx, id)
}

func (r *QueueRepository) DeleteMessage(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM message_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("no message found with id %d", id)
	}

	return nil
}

// GetQueue returns one page of the queue, newest first, optionally
// filtered by status and/or session.
func (r *QueueRepository) GetQueue(
	ctx context.Context,
	status *domain.QueueStatus,
	session *domain.SessionType,
	page, pageSize int,
) ([]domain.QueuedMessage, int64, error) {
	where := ""
	args := []any{}

	if status != nil {
		where = " WHERE status = ?"
		args = append(args, *status)
	}
	if session != nil {
		if where == "" {
			where = " WHERE session_type = ?"
		} else {
			where += " AND session_type = ?"
		}
		args = append(args, *session)
	}

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM message_queue"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count queued messages: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `SELECT ` + queueColumns + ` FROM message_queue` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	var messages []domain.QueuedMessage
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get queued messages: %w", err)
	}

	return messages, totalCount, nil
}

func (r *QueueRepository) GetStats(ctx context.Context) (*domain.QueueStats, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0)    AS pending,
			COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
			COALESCE(SUM(CASE WHEN status = 'sent' THEN 1 ELSE 0 END), 0)       AS sent,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)     AS failed,
			COALESCE(SUM(CASE WHEN status = 'skipped' THEN 1 ELSE 0 END), 0)    AS skipped
		FROM message_queue
	`

	var stats domain.QueueStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get queue stats: %w", err)
	}

	return &stats, nil
}
