package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Sentinel values used by the store services for optional pet fields.
const (
	SentinelNA = "NA"
)

// BirthdateLayout is the literal day-month-year format pets are stored with.
const BirthdateLayout = "02-01-2006"

// Event types published to Kafka
const (
	EventTypePurchaseCompleted = "purchase_completed"
)

// Domain Models

// PetType represents a species registered in one store, enriched from the
// animal-facts API at registration time.
type PetType struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	StoreID    string         `db:"store_id" json:"-"`
	Type       string         `db:"type" json:"type"`
	Family     string         `db:"family" json:"family"`
	Genus      string         `db:"genus" json:"genus"`
	Attributes pq.StringArray `db:"attributes" json:"attributes"`
	Lifespan   *int           `db:"lifespan" json:"lifespan"`
	Pets       pq.StringArray `db:"pets" json:"pets"`
}

// Pet represents a single animal within a pet type. Birthdate and Picture
// hold the "NA" sentinel when unknown.
type Pet struct {
	StoreID   string    `db:"store_id" json:"-"`
	PetTypeID uuid.UUID `db:"pet_type_id" json:"-"`
	Name      string    `db:"name" json:"name"`
	Birthdate string    `db:"birthdate" json:"birthdate"`
	Picture   string    `db:"picture" json:"picture"`
}

// Transaction is one completed purchase in the append-only ledger.
type Transaction struct {
	Purchaser  string `db:"purchaser" json:"purchaser"`
	PetType    string `db:"pet_type" json:"pet-type"`
	Store      int    `db:"store" json:"store"`
	PurchaseID string `db:"purchase_id" json:"purchase-id"`
}

// AnimalFacts is the subset of the external animal-facts record the store
// service cares about.
type AnimalFacts struct {
	Name          string
	Family        string
	Genus         string
	Temperament   string
	GroupBehavior string
	LifespanText  string
}

// OutboxEvent represents a pending event row awaiting publication to Kafka.
type OutboxEvent struct {
	ID              int64     `db:"id" json:"id"`
	EventType       string    `db:"event_type" json:"event_type"`
	Key             string    `db:"key" json:"key"`
	Payload         string    `db:"payload" json:"payload"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	Published       bool      `db:"published" json:"published"`
	PublishAttempts int       `db:"publish_attempts" json:"publish_attempts"`
	LastError       *string   `db:"last_error" json:"last_error,omitempty"`
}

// PurchaseEvent is the message written to the purchases topic after a
// transaction is committed to the ledger.
type PurchaseEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	PurchaseID string    `json:"purchase_id"`
	Purchaser  string    `json:"purchaser"`
	PetType    string    `json:"pet_type"`
	Store      int       `json:"store"`
	PetName    string    `json:"pet_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// API Request Models

// CreatePetTypeRequest registers a new pet type in a store.
type CreatePetTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

// CreatePetRequest registers a pet within an existing pet type.
type CreatePetRequest struct {
	Name       string  `json:"name" binding:"required"`
	Birthdate  *string `json:"birthdate"`
	PictureURL *string `json:"picture-url"`
}

// UpdatePetRequest replaces a pet's mutable fields.
type UpdatePetRequest struct {
	Name       string  `json:"name" binding:"required"`
	Birthdate  *string `json:"birthdate"`
	PictureURL *string `json:"picture-url"`
}

// PurchaseRequest asks the order service to locate and buy one pet.
// Store and PetName are optional; PetName is only meaningful with Store.
// Store membership is checked by the order service so that field checks
// run in request order.
type PurchaseRequest struct {
	Purchaser string  `json:"purchaser" binding:"required"`
	PetType   string  `json:"pet-type" binding:"required"`
	Store     *int    `json:"store"`
	PetName   *string `json:"pet-name"`
}

// API Response Models

// Purchase is the confirmation returned for a completed purchase.
type Purchase struct {
	Purchaser  string `json:"purchaser"`
	PetType    string `json:"pet-type"`
	Store      int    `json:"store"`
	PetName    string `json:"pet-name"`
	PurchaseID string `json:"purchase-id"`
}

// Inter-service wire models (what the order service reads off a store)

// StorePetType is one entry of a store's GET /pet-types listing.
type StorePetType struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Family     string   `json:"family"`
	Genus      string   `json:"genus"`
	Attributes []string `json:"attributes"`
	Lifespan   *int     `json:"lifespan"`
}

// StorePet is one entry of a store's GET /pet-types/{id}/pets listing.
type StorePet struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	Picture   string `json:"picture"`
}

// AvailabilityResult is the resolver's choice: the pet, where it lives, and
// the addressing needed to remove it.
type AvailabilityResult struct {
	Pet       StorePet
	Store     int
	PetTypeID string
}

// TransactionFilter holds the recognized ledger query filters. Nil fields
// are absent; all present fields are ANDed.
type TransactionFilter struct {
	Purchaser  *string
	PetType    *string
	Store      *string // raw query text; matched as integer when parseable
	PurchaseID *string
}

// PetTypeFilter holds the recognized pet-type listing filters.
type PetTypeFilter struct {
	ID           *string
	Type         *string
	Family       *string
	Genus        *string
	Lifespan     *string // integer when parseable, else case-insensitive text
	HasAttribute *string
}

// Domain errors

var (
	// ErrNotFound is returned when a pet type or pet does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a type or pet name already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrTypeHasPets blocks deletion of a pet type with registered pets.
	ErrTypeHasPets = errors.New("pet type still has pets")
	// ErrUnknownAnimal means the animal-facts API has no exact match.
	ErrUnknownAnimal = errors.New("unknown animal type")
	// ErrFactsUnavailable means the animal-facts API failed or rejected us.
	ErrFactsUnavailable = errors.New("animal facts service unavailable")
	// ErrNotAvailable means no pet satisfied the purchase constraints.
	ErrNotAvailable = errors.New("no pet of this type is available")
	// ErrRemovalFailed means the winning store did not confirm the delete.
	ErrRemovalFailed = errors.New("failed to remove pet from store")
)

// ValidationError reports one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return "validation error for field '" + e.Field + "': " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
