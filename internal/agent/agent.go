package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Incoming - объект тендера, как его отдаёт внешний источник.
// Лишние поля источника игнорируются.
type Incoming struct {
	Title       string  `json:"title"`
	Org         string  `json:"org"`
	Score       float64 `json:"score"`
	Deadline    string  `json:"deadline"`
	Link        string  `json:"link"`
	Sector      string  `json:"sector"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

// Source - интерфейс внешнего источника тендеров.
type Source interface {
	Fetch(ctx context.Context) ([]Incoming, error)
}

// Client - HTTP-клиент источника тендеров.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient создаёт клиент внешнего источника тендеров.
func NewClient(url string) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch запрашивает у источника список тендеров одним GET-запросом.
func (c *Client) Fetch(ctx context.Context) ([]Incoming, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("agent url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent returned status %d", resp.StatusCode)
	}

	var incoming []Incoming
	if err := json.NewDecoder(resp.Body).Decode(&incoming); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}
	return incoming, nil
}
