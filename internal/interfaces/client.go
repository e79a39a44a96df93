package interfaces

import (
	"context"

	"petstore-service/internal/models"
)

// StoreClient is the HTTP contract the order service consumes from each
// inventory store instance.
type StoreClient interface {
	ListPetTypes(ctx context.Context, baseURL string) ([]models.StorePetType, error)
	ListPets(ctx context.Context, baseURL, petTypeID string) ([]models.StorePet, error)
	DeletePet(ctx context.Context, baseURL, petTypeID, name string) error
}

// FactsClient looks up the external animal-facts record for a species name.
// Returns models.ErrUnknownAnimal when there is no exact match.
type FactsClient interface {
	Lookup(ctx context.Context, name string) (*models.AnimalFacts, error)
}

// ImageStore downloads and serves pet pictures.
type ImageStore interface {
	Filename(petName, typeName, pictureURL string) string
	Download(ctx context.Context, url, filename string) error
	Remove(filename string)
	Path(filename string) (string, bool)
}
