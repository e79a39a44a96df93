package interfaces

import (
	"context"

	"github.com/google/uuid"

	"petstore-service/internal/models"
)

// StoreService defines the business operations of one inventory store.
type StoreService interface {
	CreatePetType(ctx context.Context, typeName string) (*models.PetType, error)
	GetPetType(ctx context.Context, id uuid.UUID) (*models.PetType, error)
	ListPetTypes(ctx context.Context, filter models.PetTypeFilter) ([]models.PetType, error)
	DeletePetType(ctx context.Context, id uuid.UUID) error

	CreatePet(ctx context.Context, petTypeID uuid.UUID, req *models.CreatePetRequest) (*models.Pet, error)
	GetPet(ctx context.Context, petTypeID uuid.UUID, name string) (*models.Pet, error)
	ListPets(ctx context.Context, petTypeID uuid.UUID, birthdateGT, birthdateLT string) ([]models.Pet, error)
	UpdatePet(ctx context.Context, petTypeID uuid.UUID, name string, req *models.UpdatePetRequest) (*models.Pet, error)
	DeletePet(ctx context.Context, petTypeID uuid.UUID, name string) error
}

// OrderService defines the purchase-routing operations.
type OrderService interface {
	Purchase(ctx context.Context, req *models.PurchaseRequest) (*models.Purchase, error)
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}
