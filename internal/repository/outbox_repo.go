package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

// OutboxRepository handles outbox operations with advisory locking
type OutboxRepository struct {
	db *sqlx.DB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *sqlx.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// InsertOutboxEvent stores an event row inside the caller's transaction
func (r *OutboxRepository) InsertOutboxEvent(ctx context.Context, tx *sqlx.Tx, eventType, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	query := `INSERT INTO outbox (event_type, key, payload, created_at, published, publish_attempts)
			  VALUES ($1, $2, $3, NOW(), FALSE, 0)`

	if _, err := tx.ExecContext(ctx, query, eventType, key, string(data)); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to insert outbox event")
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return nil
}

// TryAcquireOutboxLock attempts to acquire a PostgreSQL advisory lock.
// Returns true if lock was acquired, false if another worker has it.
func (r *OutboxRepository) TryAcquireOutboxLock(ctx context.Context, lockKey int64) (bool, error) {
	var acquired bool
	query := "SELECT pg_try_advisory_lock($1)"

	err := r.db.QueryRowContext(ctx, query, lockKey).Scan(&acquired)
	if err != nil && err != sql.ErrNoRows {
		log.Error().Err(err).Int64("lock_key", lockKey).Msg("Failed to acquire advisory lock")
		return false, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	return acquired, nil
}

// ReleaseOutboxLock releases the PostgreSQL advisory lock
func (r *OutboxRepository) ReleaseOutboxLock(ctx context.Context, lockKey int64) error {
	var released bool
	query := "SELECT pg_advisory_unlock($1)"

	if err := r.db.QueryRowContext(ctx, query, lockKey).Scan(&released); err != nil {
		log.Error().Err(err).Int64("lock_key", lockKey).Msg("Failed to release advisory lock")
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}

	if !released {
		log.Warn().Int64("lock_key", lockKey).Msg("Advisory lock was not held when trying to release")
	}

	return nil
}

// FetchOutboxBatchOrdered fetches unpublished events in insertion order.
// FOR UPDATE SKIP LOCKED keeps concurrent workers off the same rows.
func (r *OutboxRepository) FetchOutboxBatchOrdered(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	events := []models.OutboxEvent{}
	query := `SELECT id, event_type, key, payload, created_at, published, publish_attempts, last_error
			  FROM outbox
			  WHERE published = FALSE
			  ORDER BY id ASC
			  LIMIT $1
			  FOR UPDATE SKIP LOCKED`

	if err := r.db.SelectContext(ctx, &events, query, limit); err != nil {
		log.Error().Err(err).Msg("Failed to fetch outbox batch")
		return nil, fmt.Errorf("failed to fetch outbox batch: %w", err)
	}

	return events, nil
}

// MarkOutboxPublished marks the given outbox rows as published
func (r *OutboxRepository) MarkOutboxPublished(ctx context.Context, ids []int64) error {
	query := `UPDATE outbox SET published = TRUE WHERE id = ANY($1)`

	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		log.Error().Err(err).Msg("Failed to mark outbox events as published")
		return fmt.Errorf("failed to mark outbox events as published: %w", err)
	}

	return nil
}

// IncrementPublishAttempts records a failed publish attempt for one row
func (r *OutboxRepository) IncrementPublishAttempts(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE outbox SET publish_attempts = publish_attempts + 1, last_error = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, lastError); err != nil {
		log.Error().Err(err).Int64("outbox_id", id).Msg("Failed to increment publish attempts")
		return fmt.Errorf("failed to increment publish attempts: %w", err)
	}

	return nil
}
