package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petstore-service/internal/animalfacts"
	"petstore-service/internal/models"
)

const factsPayload = `[
	{
		"name": "Bulldog",
		"taxonomy": {"family": "Canidae", "genus": "Canis"},
		"characteristics": {
			"temperament": "Friendly, courageous, calm",
			"group_behavior": "Pack",
			"lifespan": "8 - 10 years"
		}
	},
	{
		"name": "Bulldog Shark",
		"taxonomy": {"family": "Carcharhinidae", "genus": "Carcharhinus"},
		"characteristics": {"lifespan": "16 years"}
	}
]`

func TestAnimalFactsClient_Lookup_ExactMatch(t *testing.T) {
	// Arrange
	var gotAPIKey, gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("X-Api-Key")
		gotName = r.URL.Query().Get("name")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(factsPayload))
	}))
	defer server.Close()

	client := animalfacts.New(server.URL, "test-key", 0)

	// Act: el API hace busqueda por prefijo, solo cuenta el match exacto
	facts, err := client.Lookup(context.Background(), "bulldog")

	// Assert
	assert.NoError(t, err)
	require.NotNil(t, facts)
	assert.Equal(t, "Bulldog", facts.Name)
	assert.Equal(t, "Canidae", facts.Family)
	assert.Equal(t, "Canis", facts.Genus)
	assert.Equal(t, "Friendly, courageous, calm", facts.Temperament)
	assert.Equal(t, "8 - 10 years", facts.LifespanText)

	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "bulldog", gotName)
}

func TestAnimalFactsClient_Lookup_PrefixOnlyIsUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(factsPayload))
	}))
	defer server.Close()

	client := animalfacts.New(server.URL, "test-key", 0)

	facts, err := client.Lookup(context.Background(), "Bull")

	assert.ErrorIs(t, err, models.ErrUnknownAnimal)
	assert.Nil(t, facts)
}

func TestAnimalFactsClient_Lookup_APIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := animalfacts.New(server.URL, "bad-key", 0)

	facts, err := client.Lookup(context.Background(), "Bulldog")

	assert.ErrorIs(t, err, models.ErrFactsUnavailable)
	assert.Nil(t, facts)
}

func TestAnimalFactsClient_Lookup_Unreachable(t *testing.T) {
	client := animalfacts.New("http://127.0.0.1:1", "test-key", 0)

	facts, err := client.Lookup(context.Background(), "Bulldog")

	assert.ErrorIs(t, err, models.ErrFactsUnavailable)
	assert.Nil(t, facts)
}

func TestParseLifespan(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected *int
	}{
		{name: "range", text: "10 - 13 years", expected: intPtr(10)},
		{name: "single value", text: "16 years", expected: intPtr(16)},
		{name: "number embedded in text", text: "up to 20 years in captivity", expected: intPtr(20)},
		{name: "no number", text: "unknown", expected: nil},
		{name: "empty", text: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := animalfacts.ParseLifespan(tt.text)
			if tt.expected == nil {
				assert.Nil(t, result)
			} else {
				require.NotNil(t, result)
				assert.Equal(t, *tt.expected, *result)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		facts    models.AnimalFacts
		expected []string
	}{
		{
			name:     "temperament wins",
			facts:    models.AnimalFacts{Temperament: "Loyal, outgoing.", GroupBehavior: "Pack"},
			expected: []string{"Loyal", "outgoing"},
		},
		{
			name:     "falls back to group behavior",
			facts:    models.AnimalFacts{GroupBehavior: "Solitary/Pairs"},
			expected: []string{"Solitary", "Pairs"},
		},
		{
			name:     "nothing known",
			facts:    models.AnimalFacts{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, animalfacts.ParseAttributes(&tt.facts))
		})
	}
}
