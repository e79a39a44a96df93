package test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petstore-service/internal/models"
)

// Tests simples para validar los nombres de campo del API publico
func TestModels_PurchaseWireFormat(t *testing.T) {
	purchase := models.Purchase{
		Purchaser:  "Alice",
		PetType:    "Dog",
		Store:      2,
		PetName:    "Rex",
		PurchaseID: "p-1",
	}

	data, err := json.Marshal(purchase)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Validar estructura: claves con guion, no camelCase
	assert.Equal(t, "Dog", decoded["pet-type"])
	assert.Equal(t, "Rex", decoded["pet-name"])
	assert.Equal(t, "p-1", decoded["purchase-id"])
	assert.Equal(t, "Alice", decoded["purchaser"])
}

func TestModels_TransactionWireFormat(t *testing.T) {
	txn := models.Transaction{
		Purchaser:  "Alice",
		PetType:    "Dog",
		Store:      1,
		PurchaseID: "p-1",
	}

	data, err := json.Marshal(txn)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Dog", decoded["pet-type"])
	assert.Equal(t, "p-1", decoded["purchase-id"])
	assert.Equal(t, float64(1), decoded["store"])
}

func TestModels_PurchaseRequestAcceptsOptionalFields(t *testing.T) {
	var req models.PurchaseRequest
	err := json.Unmarshal([]byte(`{"purchaser":"Alice","pet-type":"Dog"}`), &req)

	require.NoError(t, err)
	assert.Equal(t, "Alice", req.Purchaser)
	assert.Nil(t, req.Store)
	assert.Nil(t, req.PetName)
}

func TestModels_ValidationError(t *testing.T) {
	err := models.NewValidationError("store", "Unknown store")

	assert.True(t, models.IsValidationError(err))
	assert.Contains(t, err.Error(), "store")
	assert.Contains(t, err.Error(), "Unknown store")

	// Tambien detras de un wrap
	wrapped := fmt.Errorf("purchase rejected: %w", err)
	assert.True(t, models.IsValidationError(wrapped))

	assert.False(t, models.IsValidationError(models.ErrNotFound))
	assert.False(t, models.IsValidationError(nil))
}

func TestModels_ProblemDetails(t *testing.T) {
	problem := models.NewValidationProblem("store", "Unknown store", models.ErrorCodeInvalidField)

	assert.Equal(t, models.ProblemTypeValidationError, problem.Type)
	assert.Equal(t, 400, problem.Status)
	assert.Equal(t, "store", problem.Field)
	assert.Equal(t, string(models.ErrorCodeInvalidField), problem.Code)

	unauthorized := models.NewUnauthorizedProblem()
	assert.Equal(t, 401, unauthorized.Status)
	assert.Equal(t, string(models.ErrorCodeUnauthorized), unauthorized.Code)

	notFound := models.NewNotFoundProblem("Pet type")
	assert.Equal(t, 404, notFound.Status)
	assert.Equal(t, "Pet type not found", notFound.Detail)
}

func TestModels_ProblemTypeForStatus(t *testing.T) {
	assert.Equal(t, models.ProblemTypeValidationError, models.NewProblemDetails(400, "t", "d").Type)
	assert.Equal(t, models.ProblemTypeBusinessError, models.NewProblemDetails(415, "t", "d").Type)
	assert.Equal(t, models.ProblemTypeInternalError, models.NewProblemDetails(500, "t", "d").Type)
}
