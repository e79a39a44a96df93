package interfaces

import (
	"context"

	"github.com/google/uuid"

	"petstore-service/internal/models"
)

// PetTypeRepository defines the contract for pet-type data operations.
// All operations are scoped to a single store.
type PetTypeRepository interface {
	GetByID(ctx context.Context, storeID string, id uuid.UUID) (*models.PetType, error)
	GetByTypeName(ctx context.Context, storeID, typeName string) (*models.PetType, error)
	List(ctx context.Context, storeID string, filter models.PetTypeFilter) ([]models.PetType, error)
	Create(ctx context.Context, petType *models.PetType) error
	Delete(ctx context.Context, storeID string, id uuid.UUID) error

	// Pets-list maintenance on the pet-type document
	AddPetName(ctx context.Context, storeID string, id uuid.UUID, name string) error
	RemovePetName(ctx context.Context, storeID string, id uuid.UUID, name string) error
	RenamePetName(ctx context.Context, storeID string, id uuid.UUID, oldName, newName string) error
}

// PetRepository defines the contract for pet data operations.
type PetRepository interface {
	List(ctx context.Context, storeID string, petTypeID uuid.UUID) ([]models.Pet, error)
	Get(ctx context.Context, storeID string, petTypeID uuid.UUID, name string) (*models.Pet, error)
	Create(ctx context.Context, pet *models.Pet) error
	Update(ctx context.Context, storeID string, petTypeID uuid.UUID, name string, pet *models.Pet) error
	Delete(ctx context.Context, storeID string, petTypeID uuid.UUID, name string) error
	DeleteByType(ctx context.Context, storeID string, petTypeID uuid.UUID) error
}

// TransactionRepository defines the contract for the append-only purchase
// ledger. RecordPurchase atomically writes the transaction row and the
// matching outbox event.
type TransactionRepository interface {
	RecordPurchase(ctx context.Context, txn *models.Transaction, event *models.PurchaseEvent) error
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

// OutboxRepository defines the contract the outbox worker needs to drain
// committed events into Kafka.
type OutboxRepository interface {
	TryAcquireOutboxLock(ctx context.Context, lockKey int64) (bool, error)
	ReleaseOutboxLock(ctx context.Context, lockKey int64) error
	FetchOutboxBatchOrdered(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkOutboxPublished(ctx context.Context, ids []int64) error
	IncrementPublishAttempts(ctx context.Context, id int64, lastError string) error
}
