package animalfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"petstore-service/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client queries the external animal-facts API used to enrich pet types
// at registration time.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New creates an animal-facts client
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// NewWithTransport injects a RoundTripper, mainly for tests
func NewWithTransport(baseURL, apiKey string, timeout time.Duration, tr http.RoundTripper) *Client {
	c := New(baseURL, apiKey, timeout)
	c.http.Transport = tr
	return c
}

// wire types of the upstream API

type animalRecord struct {
	Name     string `json:"name"`
	Taxonomy struct {
		Family string `json:"family"`
		Genus  string `json:"genus"`
	} `json:"taxonomy"`
	Characteristics struct {
		Temperament   string `json:"temperament"`
		GroupBehavior string `json:"group_behavior"`
		Lifespan      string `json:"lifespan"`
	} `json:"characteristics"`
}

// Lookup searches the facts API for an exact (case-insensitive) name match.
// Returns models.ErrUnknownAnimal when the API answers but has no exact
// match, and models.ErrFactsUnavailable when the API itself fails.
func (c *Client) Lookup(ctx context.Context, name string) (*models.AnimalFacts, error) {
	reqURL := fmt.Sprintf("%s?name=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("animalfacts: new request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("animal", name).Msg("Animal facts request failed")
		return nil, fmt.Errorf("%w: %v", models.ErrFactsUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("animal", name).Msg("Animal facts API error")
		return nil, fmt.Errorf("%w: API response code %d", models.ErrFactsUnavailable, resp.StatusCode)
	}

	var records []animalRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", models.ErrFactsUnavailable, err)
	}

	// The API does prefix search; only an exact name match counts
	for _, record := range records {
		if strings.EqualFold(record.Name, name) {
			return &models.AnimalFacts{
				Name:          record.Name,
				Family:        record.Taxonomy.Family,
				Genus:         record.Taxonomy.Genus,
				Temperament:   record.Characteristics.Temperament,
				GroupBehavior: record.Characteristics.GroupBehavior,
				LifespanText:  record.Characteristics.Lifespan,
			}, nil
		}
	}

	return nil, models.ErrUnknownAnimal
}

var (
	numberPattern = regexp.MustCompile(`\d+`)
	wordPattern   = regexp.MustCompile(`\w+`)
)

// ParseLifespan extracts the minimum lifespan in years from free text like
// "10 - 13 years". Returns nil when the text carries no number.
func ParseLifespan(lifespanText string) *int {
	if lifespanText == "" {
		return nil
	}

	match := numberPattern.FindString(lifespanText)
	if match == "" {
		return nil
	}

	years, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &years
}

// ParseAttributes splits the temperament (or, when absent, group behavior)
// text into descriptive words, punctuation stripped.
func ParseAttributes(facts *models.AnimalFacts) []string {
	text := facts.Temperament
	if text == "" {
		text = facts.GroupBehavior
	}
	if text == "" {
		return []string{}
	}

	words := wordPattern.FindAllString(text, -1)
	if words == nil {
		return []string{}
	}
	return words
}
