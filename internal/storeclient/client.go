package storeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"petstore-service/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to an inventory store's HTTP API. A timeout is always set;
// a timed-out call is indistinguishable from an unreachable store, which is
// what the resolver wants.
type Client struct {
	http *http.Client
}

// New creates a store client with the given outbound timeout
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// NewWithTransport injects a RoundTripper, mainly for tests
func NewWithTransport(timeout time.Duration, tr http.RoundTripper) *Client {
	c := New(timeout)
	c.http.Transport = tr
	return c
}

// ListPetTypes fetches a store's full pet-type listing
func (c *Client) ListPetTypes(ctx context.Context, baseURL string) ([]models.StorePetType, error) {
	var petTypes []models.StorePetType
	if err := c.getJSON(ctx, baseURL+"/pet-types", &petTypes); err != nil {
		return nil, err
	}
	return petTypes, nil
}

// ListPets fetches all pets of one type from a store
func (c *Client) ListPets(ctx context.Context, baseURL, petTypeID string) ([]models.StorePet, error) {
	var pets []models.StorePet
	path := fmt.Sprintf("%s/pet-types/%s/pets", baseURL, url.PathEscape(petTypeID))
	if err := c.getJSON(ctx, path, &pets); err != nil {
		return nil, err
	}
	return pets, nil
}

// DeletePet removes one pet from a store. Any non-2xx answer means the
// removal was not confirmed.
func (c *Client) DeletePet(ctx context.Context, baseURL, petTypeID, name string) error {
	path := fmt.Sprintf("%s/pet-types/%s/pets/%s", baseURL, url.PathEscape(petTypeID), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("storeclient: new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("storeclient: delete pet: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("storeclient: delete pet: status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("storeclient: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("storeclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("storeclient: status %d from %s", resp.StatusCode, strings.SplitN(fullURL, "?", 2)[0])
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storeclient: decode response: %w", err)
	}

	return nil
}
