package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

// TransactionRepository handles the append-only purchase ledger
type TransactionRepository struct {
	db         *sqlx.DB
	outboxRepo *OutboxRepository
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{
		db:         db,
		outboxRepo: NewOutboxRepository(db),
	}
}

// RecordPurchase appends one transaction to the ledger and stores the
// purchase event in the outbox within the same database transaction, so the
// event is published only for ledger entries that actually committed.
func (r *TransactionRepository) RecordPurchase(ctx context.Context, txn *models.Transaction, event *models.PurchaseEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO transactions (purchaser, pet_type, store, purchase_id)
			  VALUES ($1, $2, $3, $4)`

	_, err = tx.ExecContext(ctx, query, txn.Purchaser, txn.PetType, txn.Store, txn.PurchaseID)
	if err != nil {
		log.Error().Err(err).Str("purchase_id", txn.PurchaseID).Msg("Failed to insert transaction")
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := r.outboxRepo.InsertOutboxEvent(ctx, tx, models.EventTypePurchaseCompleted, strconv.Itoa(txn.Store), event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List retrieves ledger entries matching the filter. Present filter fields
// are ANDed; an empty filter returns the full ledger.
func (r *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := `SELECT purchaser, pet_type, store, purchase_id FROM transactions WHERE 1=1`
	args := []interface{}{}

	appendArg := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.Purchaser != nil {
		appendArg(" AND purchaser = $%d", *filter.Purchaser)
	}
	if filter.PetType != nil {
		appendArg(" AND pet_type = $%d", *filter.PetType)
	}
	if filter.Store != nil {
		// Integer when parseable, else matched against the column's text form
		if store, err := strconv.Atoi(*filter.Store); err == nil {
			appendArg(" AND store = $%d", store)
		} else {
			appendArg(" AND store::text = $%d", *filter.Store)
		}
	}
	if filter.PurchaseID != nil {
		appendArg(" AND purchase_id = $%d", *filter.PurchaseID)
	}

	query += ` ORDER BY id ASC`

	transactions := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}
