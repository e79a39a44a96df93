package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"petstore-service/internal/interfaces"
	"petstore-service/internal/models"
)

// OrderService coordinates purchases across the configured inventory
// stores: it resolves an available pet, removes it from the winning store,
// and appends the transaction to the ledger.
type OrderService struct {
	stores   map[int]string // store selector -> base URL
	storeIDs []int          // selectors in ascending order
	client   interfaces.StoreClient
	cache    interfaces.PetTypeCache
	ledger   interfaces.TransactionRepository
	rng      func(n int) int
}

// NewOrderService creates a new order service. rng draws a uniform index in
// [0, n); pass nil for the default source.
func NewOrderService(
	stores map[int]string,
	client interfaces.StoreClient,
	cache interfaces.PetTypeCache,
	ledger interfaces.TransactionRepository,
	rng func(n int) int,
) (*OrderService, error) {
	if len(stores) == 0 {
		return nil, fmt.Errorf("at least one store must be configured")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())).Intn
	}

	storeIDs := make([]int, 0, len(stores))
	for id := range stores {
		storeIDs = append(storeIDs, id)
	}
	sort.Ints(storeIDs)

	return &OrderService{
		stores:   stores,
		storeIDs: storeIDs,
		client:   client,
		cache:    cache,
		ledger:   ledger,
		rng:      rng,
	}, nil
}

// FindAvailable locates one available pet of the requested type. The
// selection policy depends on which constraints are present:
//
//   - store and pet name: exact pet, no randomness
//   - store only: uniform pick among that store's pets of the type
//   - neither: uniform pick over the pooled candidates of all stores
//
// Pet names match case-sensitively while type names match
// case-insensitively. A store that is unreachable, or that does not carry
// the type, contributes zero candidates.
func (s *OrderService) FindAvailable(ctx context.Context, petType string, store *int, petName *string) (*models.AvailabilityResult, error) {
	if store != nil {
		baseURL, ok := s.stores[*store]
		if !ok {
			return nil, models.ErrNotAvailable
		}

		petTypeID, ok := s.resolveTypeID(ctx, *store, baseURL, petType)
		if !ok {
			return nil, models.ErrNotAvailable
		}

		pets, err := s.client.ListPets(ctx, baseURL, petTypeID)
		if err != nil {
			log.Warn().Err(err).Int("store", *store).Msg("Store unreachable during resolution")
			return nil, models.ErrNotAvailable
		}

		if petName != nil {
			for _, pet := range pets {
				if pet.Name == *petName {
					return &models.AvailabilityResult{Pet: pet, Store: *store, PetTypeID: petTypeID}, nil
				}
			}
			return nil, models.ErrNotAvailable
		}

		if len(pets) == 0 {
			return nil, models.ErrNotAvailable
		}
		chosen := pets[s.rng(len(pets))]
		return &models.AvailabilityResult{Pet: chosen, Store: *store, PetTypeID: petTypeID}, nil
	}

	// No store constraint: pool candidates across every configured store
	// and draw uniformly from the pooled set, not per store.
	var pool []models.AvailabilityResult
	for _, storeID := range s.storeIDs {
		baseURL := s.stores[storeID]

		petTypeID, ok := s.resolveTypeID(ctx, storeID, baseURL, petType)
		if !ok {
			continue
		}

		pets, err := s.client.ListPets(ctx, baseURL, petTypeID)
		if err != nil {
			log.Warn().Err(err).Int("store", storeID).Msg("Store unreachable during resolution")
			continue
		}

		for _, pet := range pets {
			pool = append(pool, models.AvailabilityResult{Pet: pet, Store: storeID, PetTypeID: petTypeID})
		}
	}

	if len(pool) == 0 {
		return nil, models.ErrNotAvailable
	}
	chosen := pool[s.rng(len(pool))]
	return &chosen, nil
}

// resolveTypeID finds the identifier of a pet type in one store,
// case-insensitive on the type name. Lookups go through the cache; cache
// trouble and store trouble both degrade to "type not found here".
func (s *OrderService) resolveTypeID(ctx context.Context, store int, baseURL, petType string) (string, bool) {
	if id, err := s.cache.GetPetTypeID(ctx, store, petType); err == nil && id != "" {
		return id, true
	}

	petTypes, err := s.client.ListPetTypes(ctx, baseURL)
	if err != nil {
		log.Warn().Err(err).Int("store", store).Msg("Failed to list pet types during resolution")
		return "", false
	}

	for _, candidate := range petTypes {
		if strings.EqualFold(candidate.Type, petType) {
			if err := s.cache.SetPetTypeID(ctx, store, petType, candidate.ID); err != nil {
				log.Debug().Err(err).Int("store", store).Msg("Failed to cache pet type id")
			}
			return candidate.ID, true
		}
	}

	return "", false
}

// Purchase validates the request, resolves an available pet, removes it
// from the winning store and records the transaction. The removal must be
// confirmed before the ledger write; a failure in between aborts the
// purchase with no ledger entry.
func (s *OrderService) Purchase(ctx context.Context, req *models.PurchaseRequest) (*models.Purchase, error) {
	purchaser := strings.TrimSpace(req.Purchaser)
	petType := strings.TrimSpace(req.PetType)

	if err := s.validatePurchase(purchaser, petType, req.Store, req.PetName); err != nil {
		return nil, err
	}

	petName := req.PetName
	if petName != nil && *petName == "" {
		petName = nil
	}

	result, err := s.FindAvailable(ctx, petType, req.Store, petName)
	if err != nil {
		return nil, err
	}

	// Find-then-delete is not atomic: a concurrent purchase may have
	// claimed the same pet, in which case this delete fails and the
	// purchase is aborted rather than retried against another pet.
	baseURL := s.stores[result.Store]
	if err := s.client.DeletePet(ctx, baseURL, result.PetTypeID, result.Pet.Name); err != nil {
		log.Error().Err(err).
			Int("store", result.Store).
			Str("pet_name", result.Pet.Name).
			Msg("Failed to remove pet from store")
		return nil, fmt.Errorf("%w: %v", models.ErrRemovalFailed, err)
	}

	purchaseID := uuid.New().String()

	txn := &models.Transaction{
		Purchaser:  purchaser,
		PetType:    petType,
		Store:      result.Store,
		PurchaseID: purchaseID,
	}
	event := &models.PurchaseEvent{
		EventID:    uuid.New().String(),
		EventType:  models.EventTypePurchaseCompleted,
		PurchaseID: purchaseID,
		Purchaser:  purchaser,
		PetType:    petType,
		Store:      result.Store,
		PetName:    result.Pet.Name,
		Timestamp:  time.Now(),
	}

	if err := s.ledger.RecordPurchase(ctx, txn, event); err != nil {
		// Removal already happened; the inventory/ledger inconsistency is
		// accepted and surfaced, not compensated.
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	log.Info().
		Str("purchase_id", purchaseID).
		Str("purchaser", purchaser).
		Str("pet_type", petType).
		Int("store", result.Store).
		Str("pet_name", result.Pet.Name).
		Msg("Purchase completed")

	return &models.Purchase{
		Purchaser:  purchaser,
		PetType:    petType,
		Store:      result.Store,
		PetName:    result.Pet.Name,
		PurchaseID: purchaseID,
	}, nil
}

// validatePurchase applies the request checks in order; the first failure
// wins.
func (s *OrderService) validatePurchase(purchaser, petType string, store *int, petName *string) error {
	if purchaser == "" {
		return models.NewValidationError("purchaser", "Purchaser name is required")
	}
	if petType == "" {
		return models.NewValidationError("pet-type", "Pet type is required")
	}
	if store != nil {
		if _, ok := s.stores[*store]; !ok {
			return models.NewValidationError("store", "Unknown store")
		}
	}
	if petName != nil && *petName != "" && store == nil {
		return models.NewValidationError("pet-name", "Pet name requires a store")
	}
	return nil
}

// ListTransactions returns ledger entries matching the filter
func (s *OrderService) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	return s.ledger.List(ctx, filter)
}
