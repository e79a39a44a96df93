package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/animalfacts"
	"petstore-service/internal/interfaces"
	"petstore-service/internal/models"
)

// StoreService handles business logic for one inventory store instance
type StoreService struct {
	storeID  string
	petTypes interfaces.PetTypeRepository
	pets     interfaces.PetRepository
	facts    interfaces.FactsClient
	images   interfaces.ImageStore
}

// NewStoreService creates a new store service
func NewStoreService(
	storeID string,
	petTypes interfaces.PetTypeRepository,
	pets interfaces.PetRepository,
	facts interfaces.FactsClient,
	images interfaces.ImageStore,
) (*StoreService, error) {
	if storeID == "" {
		return nil, fmt.Errorf("store ID is required")
	}

	return &StoreService{
		storeID:  storeID,
		petTypes: petTypes,
		pets:     pets,
		facts:    facts,
		images:   images,
	}, nil
}

// CreatePetType registers a new pet type, enriched from the animal-facts
// API. Type names are unique per store, case-insensitive.
func (s *StoreService) CreatePetType(ctx context.Context, typeName string) (*models.PetType, error) {
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return nil, models.NewValidationError("type", "Type name is required")
	}

	existing, err := s.petTypes.GetByTypeName(ctx, s.storeID, typeName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("pet type %q: %w", typeName, models.ErrDuplicate)
	}

	facts, err := s.facts.Lookup(ctx, typeName)
	if err != nil {
		return nil, err
	}

	petType := &models.PetType{
		ID:         uuid.New(),
		StoreID:    s.storeID,
		Type:       typeName,
		Family:     facts.Family,
		Genus:      facts.Genus,
		Attributes: pq.StringArray(animalfacts.ParseAttributes(facts)),
		Lifespan:   animalfacts.ParseLifespan(facts.LifespanText),
		Pets:       pq.StringArray{},
	}

	if err := s.petTypes.Create(ctx, petType); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_id", s.storeID).
		Str("pet_type_id", petType.ID.String()).
		Str("type", petType.Type).
		Msg("Registered pet type")

	return petType, nil
}

// GetPetType retrieves one pet type
func (s *StoreService) GetPetType(ctx context.Context, id uuid.UUID) (*models.PetType, error) {
	petType, err := s.petTypes.GetByID(ctx, s.storeID, id)
	if err != nil {
		return nil, err
	}
	if petType == nil {
		return nil, models.ErrNotFound
	}
	return petType, nil
}

// ListPetTypes lists this store's pet types matching the filter
func (s *StoreService) ListPetTypes(ctx context.Context, filter models.PetTypeFilter) ([]models.PetType, error) {
	return s.petTypes.List(ctx, s.storeID, filter)
}

// DeletePetType removes an empty pet type. A type with registered pets
// cannot be deleted.
func (s *StoreService) DeletePetType(ctx context.Context, id uuid.UUID) error {
	petType, err := s.petTypes.GetByID(ctx, s.storeID, id)
	if err != nil {
		return err
	}
	if petType == nil {
		return models.ErrNotFound
	}

	if len(petType.Pets) > 0 {
		return models.ErrTypeHasPets
	}

	if err := s.petTypes.Delete(ctx, s.storeID, id); err != nil {
		return err
	}
	// Defensive cleanup of any orphaned pet rows
	return s.pets.DeleteByType(ctx, s.storeID, id)
}

// CreatePet registers a pet within an existing type. Birthdate and picture
// fall back to the "NA" sentinel; a failed picture download is not fatal.
func (s *StoreService) CreatePet(ctx context.Context, petTypeID uuid.UUID, req *models.CreatePetRequest) (*models.Pet, error) {
	petType, err := s.petTypes.GetByID(ctx, s.storeID, petTypeID)
	if err != nil {
		return nil, err
	}
	if petType == nil {
		return nil, models.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "Pet name is required")
	}

	existing, err := s.pets.Get(ctx, s.storeID, petTypeID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("pet %q: %w", name, models.ErrDuplicate)
	}

	birthdate := models.SentinelNA
	if req.Birthdate != nil && *req.Birthdate != "" {
		birthdate = *req.Birthdate
	}

	picture := models.SentinelNA
	if req.PictureURL != nil && strings.TrimSpace(*req.PictureURL) != "" {
		picture = s.downloadPicture(ctx, *req.PictureURL, name, petType.Type)
	}

	pet := &models.Pet{
		StoreID:   s.storeID,
		PetTypeID: petTypeID,
		Name:      name,
		Birthdate: birthdate,
		Picture:   picture,
	}

	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}
	if err := s.petTypes.AddPetName(ctx, s.storeID, petTypeID, name); err != nil {
		return nil, err
	}

	log.Info().
		Str("store_id", s.storeID).
		Str("pet_type_id", petTypeID.String()).
		Str("name", name).
		Msg("Registered pet")

	return pet, nil
}

// GetPet retrieves one pet by exact name
func (s *StoreService) GetPet(ctx context.Context, petTypeID uuid.UUID, name string) (*models.Pet, error) {
	if err := s.requirePetType(ctx, petTypeID); err != nil {
		return nil, err
	}

	pet, err := s.pets.Get(ctx, s.storeID, petTypeID, name)
	if err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, models.ErrNotFound
	}
	return pet, nil
}

// ListPets lists pets of one type, optionally filtered by a birthdate
// range. Pets without a parseable birthdate are excluded when a range
// filter is present.
func (s *StoreService) ListPets(ctx context.Context, petTypeID uuid.UUID, birthdateGT, birthdateLT string) ([]models.Pet, error) {
	if err := s.requirePetType(ctx, petTypeID); err != nil {
		return nil, err
	}

	pets, err := s.pets.List(ctx, s.storeID, petTypeID)
	if err != nil {
		return nil, err
	}

	if birthdateGT == "" && birthdateLT == "" {
		return pets, nil
	}

	gt := parseBirthdate(birthdateGT)
	lt := parseBirthdate(birthdateLT)

	filtered := make([]models.Pet, 0, len(pets))
	for _, pet := range pets {
		born := parseBirthdate(pet.Birthdate)
		if born == nil {
			continue
		}
		if gt != nil && !born.After(*gt) {
			continue
		}
		if lt != nil && !born.Before(*lt) {
			continue
		}
		filtered = append(filtered, pet)
	}

	return filtered, nil
}

// UpdatePet replaces a pet's name, birthdate and picture
func (s *StoreService) UpdatePet(ctx context.Context, petTypeID uuid.UUID, name string, req *models.UpdatePetRequest) (*models.Pet, error) {
	petType, err := s.petTypes.GetByID(ctx, s.storeID, petTypeID)
	if err != nil {
		return nil, err
	}
	if petType == nil {
		return nil, models.ErrNotFound
	}

	current, err := s.pets.Get(ctx, s.storeID, petTypeID, name)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, models.ErrNotFound
	}

	newName := strings.TrimSpace(req.Name)
	if newName == "" {
		return nil, models.NewValidationError("name", "Pet name is required")
	}

	if newName != name {
		conflict, err := s.pets.Get(ctx, s.storeID, petTypeID, newName)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, fmt.Errorf("pet %q: %w", newName, models.ErrDuplicate)
		}
	}

	birthdate := current.Birthdate
	if req.Birthdate != nil {
		birthdate = *req.Birthdate
	}

	picture := current.Picture
	if req.PictureURL != nil && strings.TrimSpace(*req.PictureURL) != "" {
		newPicture := s.downloadPicture(ctx, *req.PictureURL, newName, petType.Type)
		if newPicture != models.SentinelNA {
			if picture != models.SentinelNA && picture != newPicture {
				s.images.Remove(picture)
			}
			picture = newPicture
		}
	}

	updated := &models.Pet{
		StoreID:   s.storeID,
		PetTypeID: petTypeID,
		Name:      newName,
		Birthdate: birthdate,
		Picture:   picture,
	}

	if err := s.pets.Update(ctx, s.storeID, petTypeID, name, updated); err != nil {
		return nil, err
	}

	if newName != name {
		if err := s.petTypes.RenamePetName(ctx, s.storeID, petTypeID, name, newName); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// DeletePet removes one pet, its picture file, and its entry in the type's
// pets list
func (s *StoreService) DeletePet(ctx context.Context, petTypeID uuid.UUID, name string) error {
	if err := s.requirePetType(ctx, petTypeID); err != nil {
		return err
	}

	pet, err := s.pets.Get(ctx, s.storeID, petTypeID, name)
	if err != nil {
		return err
	}
	if pet == nil {
		return models.ErrNotFound
	}

	if pet.Picture != models.SentinelNA {
		s.images.Remove(pet.Picture)
	}

	if err := s.pets.Delete(ctx, s.storeID, petTypeID, name); err != nil {
		return err
	}
	if err := s.petTypes.RemovePetName(ctx, s.storeID, petTypeID, name); err != nil {
		return err
	}

	log.Info().
		Str("store_id", s.storeID).
		Str("pet_type_id", petTypeID.String()).
		Str("name", name).
		Msg("Removed pet")

	return nil
}

func (s *StoreService) requirePetType(ctx context.Context, petTypeID uuid.UUID) error {
	petType, err := s.petTypes.GetByID(ctx, s.storeID, petTypeID)
	if err != nil {
		return err
	}
	if petType == nil {
		return models.ErrNotFound
	}
	return nil
}

// downloadPicture fetches and stores a pet picture, returning the stored
// filename or the "NA" sentinel when the download fails
func (s *StoreService) downloadPicture(ctx context.Context, pictureURL, petName, typeName string) string {
	filename := s.images.Filename(petName, typeName, pictureURL)
	if err := s.images.Download(ctx, pictureURL, filename); err != nil {
		log.Warn().Err(err).Str("url", pictureURL).Msg("Picture download failed")
		return models.SentinelNA
	}
	return filename
}

func parseBirthdate(text string) *time.Time {
	if text == "" || text == models.SentinelNA {
		return nil
	}
	born, err := time.Parse(models.BirthdateLayout, text)
	if err != nil {
		return nil
	}
	return &born
}
