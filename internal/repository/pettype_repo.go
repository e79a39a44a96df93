package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

// PetTypeRepository handles database operations for pet types
type PetTypeRepository struct {
	db *sqlx.DB
}

// NewPetTypeRepository creates a new pet-type repository
func NewPetTypeRepository(db *sqlx.DB) *PetTypeRepository {
	return &PetTypeRepository{db: db}
}

const petTypeColumns = `id, store_id, type, family, genus, attributes, lifespan, pets`

// GetByID retrieves a pet type by its identifier within one store
func (r *PetTypeRepository) GetByID(ctx context.Context, storeID string, id uuid.UUID) (*models.PetType, error) {
	var petType models.PetType
	query := `SELECT ` + petTypeColumns + ` FROM pet_types WHERE store_id = $1 AND id = $2`

	err := r.db.GetContext(ctx, &petType, query, storeID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("pet_type_id", id.String()).Msg("Failed to get pet type")
		return nil, fmt.Errorf("failed to get pet type: %w", err)
	}

	return &petType, nil
}

// GetByTypeName retrieves a pet type by species name, case-insensitive
func (r *PetTypeRepository) GetByTypeName(ctx context.Context, storeID, typeName string) (*models.PetType, error) {
	var petType models.PetType
	query := `SELECT ` + petTypeColumns + ` FROM pet_types WHERE store_id = $1 AND LOWER(type) = LOWER($2)`

	err := r.db.GetContext(ctx, &petType, query, storeID, typeName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error().Err(err).Str("type", typeName).Msg("Failed to get pet type by name")
		return nil, fmt.Errorf("failed to get pet type by name: %w", err)
	}

	return &petType, nil
}

// List retrieves all pet types of one store matching the filter
func (r *PetTypeRepository) List(ctx context.Context, storeID string, filter models.PetTypeFilter) ([]models.PetType, error) {
	query := `SELECT ` + petTypeColumns + ` FROM pet_types WHERE store_id = $1`
	args := []interface{}{storeID}

	appendArg := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.ID != nil {
		// Invalid identifier text matches nothing rather than erroring
		id, err := uuid.Parse(*filter.ID)
		if err != nil {
			return []models.PetType{}, nil
		}
		appendArg(" AND id = $%d", id)
	}
	if filter.Type != nil {
		appendArg(" AND LOWER(type) = LOWER($%d)", *filter.Type)
	}
	if filter.Family != nil {
		appendArg(" AND LOWER(family) = LOWER($%d)", *filter.Family)
	}
	if filter.Genus != nil {
		appendArg(" AND LOWER(genus) = LOWER($%d)", *filter.Genus)
	}
	if filter.Lifespan != nil {
		if years, err := strconv.Atoi(*filter.Lifespan); err == nil {
			appendArg(" AND lifespan = $%d", years)
		} else {
			appendArg(" AND LOWER(lifespan::text) = LOWER($%d)", *filter.Lifespan)
		}
	}
	if filter.HasAttribute != nil {
		appendArg(" AND EXISTS (SELECT 1 FROM unnest(attributes) attr WHERE LOWER(attr) = LOWER($%d))", *filter.HasAttribute)
	}

	query += ` ORDER BY type ASC`

	petTypes := []models.PetType{}
	if err := r.db.SelectContext(ctx, &petTypes, query, args...); err != nil {
		log.Error().Err(err).Str("store_id", storeID).Msg("Failed to list pet types")
		return nil, fmt.Errorf("failed to list pet types: %w", err)
	}

	return petTypes, nil
}

// Create inserts a new pet type
func (r *PetTypeRepository) Create(ctx context.Context, petType *models.PetType) error {
	query := `INSERT INTO pet_types (id, store_id, type, family, genus, attributes, lifespan, pets)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query, petType.ID, petType.StoreID, petType.Type,
		petType.Family, petType.Genus, petType.Attributes, petType.Lifespan, petType.Pets)
	if err != nil {
		log.Error().Err(err).Str("type", petType.Type).Msg("Failed to create pet type")
		return fmt.Errorf("failed to create pet type: %w", err)
	}

	return nil
}

// Delete removes a pet type
func (r *PetTypeRepository) Delete(ctx context.Context, storeID string, id uuid.UUID) error {
	query := `DELETE FROM pet_types WHERE store_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, storeID, id)
	if err != nil {
		log.Error().Err(err).Str("pet_type_id", id.String()).Msg("Failed to delete pet type")
		return fmt.Errorf("failed to delete pet type: %w", err)
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

// AddPetName appends a pet name to the type's pets list
func (r *PetTypeRepository) AddPetName(ctx context.Context, storeID string, id uuid.UUID, name string) error {
	query := `UPDATE pet_types SET pets = array_append(pets, $3) WHERE store_id = $1 AND id = $2`

	if _, err := r.db.ExecContext(ctx, query, storeID, id, name); err != nil {
		log.Error().Err(err).Str("pet_type_id", id.String()).Str("name", name).Msg("Failed to add pet name")
		return fmt.Errorf("failed to add pet name: %w", err)
	}
	return nil
}

// RemovePetName removes a pet name from the type's pets list
func (r *PetTypeRepository) RemovePetName(ctx context.Context, storeID string, id uuid.UUID, name string) error {
	query := `UPDATE pet_types SET pets = array_remove(pets, $3) WHERE store_id = $1 AND id = $2`

	if _, err := r.db.ExecContext(ctx, query, storeID, id, name); err != nil {
		log.Error().Err(err).Str("pet_type_id", id.String()).Str("name", name).Msg("Failed to remove pet name")
		return fmt.Errorf("failed to remove pet name: %w", err)
	}
	return nil
}

// RenamePetName replaces one pet name in the type's pets list
func (r *PetTypeRepository) RenamePetName(ctx context.Context, storeID string, id uuid.UUID, oldName, newName string) error {
	query := `UPDATE pet_types SET pets = array_replace(pets, $3, $4) WHERE store_id = $1 AND id = $2`

	if _, err := r.db.ExecContext(ctx, query, storeID, id, oldName, newName); err != nil {
		log.Error().Err(err).Str("pet_type_id", id.String()).Str("name", oldName).Msg("Failed to rename pet")
		return fmt.Errorf("failed to rename pet: %w", err)
	}
	return nil
}
