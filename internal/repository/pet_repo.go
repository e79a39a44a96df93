package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

// PetRepository handles database operations for individual pets
type PetRepository struct {
	db *sqlx.DB
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *sqlx.DB) *PetRepository {
	return &PetRepository{db: db}
}

// List retrieves all pets of one type within one store
func (r *PetRepository) List(ctx context.Context, storeID string, petTypeID uuid.UUID) ([]models.Pet, error) {
	pets := []models.Pet{}
	query := `SELECT store_id, pet_type_id, name, birthdate, picture
			  FROM pets WHERE store_id = $1 AND pet_type_id = $2 ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &pets, query, storeID, petTypeID); err != nil {
		log.Error().Err(err).Str("pet_type_id", petTypeID.String()).Msg("Failed to list pets")
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}

	return pets, nil
}

// Get retrieves one pet by name. Pet names are case-sensitive.
func (r *PetRepository) Get(ctx context.Context, storeID string, petTypeID uuid.UUID, name string) (*models.Pet, error) {
	var pet models.Pet
	query := `SELECT store_id, pet_type_id, name, birthdate, picture
			  FROM pets WHERE store_id = $1 AND pet_type_id = $2 AND name = $3`

	err := r.db.GetContext(ctx, &pet, query, storeID, petTypeID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("name", name).Msg("Failed to get pet")
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}

	return &pet, nil
}

// Create inserts a new pet
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	query := `INSERT INTO pets (store_id, pet_type_id, name, birthdate, picture)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, pet.StoreID, pet.PetTypeID, pet.Name, pet.Birthdate, pet.Picture)
	if err != nil {
		log.Error().Err(err).Str("name", pet.Name).Msg("Failed to create pet")
		return fmt.Errorf("failed to create pet: %w", err)
	}

	return nil
}

// Update replaces a pet's name, birthdate and picture
func (r *PetRepository) Update(ctx context.Context, storeID string, petTypeID uuid.UUID, name string, pet *models.Pet) error {
	query := `UPDATE pets SET name = $4, birthdate = $5, picture = $6
			  WHERE store_id = $1 AND pet_type_id = $2 AND name = $3`

	result, err := r.db.ExecContext(ctx, query, storeID, petTypeID, name, pet.Name, pet.Birthdate, pet.Picture)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to update pet")
		return fmt.Errorf("failed to update pet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// Delete removes one pet. Returns models.ErrNotFound when no row matched,
// which is how a lost purchase race surfaces on the store side.
func (r *PetRepository) Delete(ctx context.Context, storeID string, petTypeID uuid.UUID, name string) error {
	query := `DELETE FROM pets WHERE store_id = $1 AND pet_type_id = $2 AND name = $3`

	result, err := r.db.ExecContext(ctx, query, storeID, petTypeID, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to delete pet")
		return fmt.Errorf("failed to delete pet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteByType removes all pets of one type (used when a type is deleted)
func (r *PetRepository) DeleteByType(ctx context.Context, storeID string, petTypeID uuid.UUID) error {
	query := `DELETE FROM pets WHERE store_id = $1 AND pet_type_id = $2`

	if _, err := r.db.ExecContext(ctx, query, storeID, petTypeID); err != nil {
		log.Error().Err(err).Str("pet_type_id", petTypeID.String()).Msg("Failed to delete pets of type")
		return fmt.Errorf("failed to delete pets of type: %w", err)
	}
	return nil
}
