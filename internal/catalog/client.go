// Package catalog is a client for the public PokeAPI catalog: category
// listings under /api/v2/type/{name} and per-item detail documents.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// DefaultBaseURL is the public PokeAPI host
const DefaultBaseURL = "https://pokeapi.co"

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 32 << 20

// Config holds catalog client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// Client talks to the catalog API
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a catalog client. An empty BaseURL uses the public API.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{baseURL: baseURL, client: hc}, nil
}

type typeResponse struct {
	Pokemon []struct {
		Pokemon domain.CatalogItem `json:"pokemon"`
		Slot    int                `json:"slot"`
	} `json:"pokemon"`
}

// ListByType returns every item of category in API order. An unknown
// category or one without items yields an empty slice.
func (c *Client) ListByType(ctx context.Context, category string) ([]domain.CatalogItem, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []domain.CatalogItem{}, nil
	}

	endpoint := c.baseURL + "/api/v2/type/" + url.PathEscape(strings.ToLower(category))

	var resp typeResponse
	found, err := c.getJSON(ctx, "list type", endpoint, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return []domain.CatalogItem{}, nil
	}

	items := make([]domain.CatalogItem, 0, len(resp.Pokemon))
	for _, entry := range resp.Pokemon {
		if entry.Pokemon.Name == "" {
			continue
		}
		items = append(items, entry.Pokemon)
	}
	return items, nil
}

type detailResponse struct {
	Stats []struct {
		BaseStat *int `json:"base_stat"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability struct {
			Name string `json:"name"`
		} `json:"ability"`
		Slot int `json:"slot"`
	} `json:"abilities"`
	Height *int `json:"height"`
	Weight *int `json:"weight"`
}

// GetDetail fetches the extended attributes of one item
func (c *Client) GetDetail(ctx context.Context, itemURL string) (*domain.ItemDetail, error) {
	if strings.TrimSpace(itemURL) == "" {
		return nil, errors.New("item has no detail url")
	}

	var resp detailResponse
	found, err := c.getJSON(ctx, "get detail", itemURL, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.NewTransportError("get detail", fmt.Errorf("%s: not found", itemURL))
	}

	detail := &domain.ItemDetail{
		Stats:     make(map[string]int, len(resp.Stats)),
		Abilities: make([]string, 0, len(resp.Abilities)),
		Height:    resp.Height,
		Weight:    resp.Weight,
	}
	for _, s := range resp.Stats {
		if s.Stat.Name == "" || s.BaseStat == nil {
			continue
		}
		detail.Stats[s.Stat.Name] = *s.BaseStat
	}
	for _, a := range resp.Abilities {
		detail.Abilities = append(detail.Abilities, a.Ability.Name)
	}

	return detail, nil
}

// getJSON decodes a 2xx response into out. A 404 returns found=false.
func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, domain.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, domain.NewTransportError(op, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return false, domain.NewParseError(op, err)
	}
	return true, nil
}
