package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

const defaultCoinbaseURL = "https://api.coinbase.com"

// Coinbase reads the spot price from the Coinbase public API.
type Coinbase struct {
	baseURL string
	pair    string // e.g. "BTC-USD"
	client  *http.Client
}

func NewCoinbase(baseURL, pair string, client *http.Client) *Coinbase {
	if baseURL == "" {
		baseURL = defaultCoinbaseURL
	}
	return &Coinbase{baseURL: baseURL, pair: pair, client: client}
}

func (c *Coinbase) Name() string { return "coinbase" }

func (c *Coinbase) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v2/prices/%s/spot", c.baseURL, c.pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coinbase request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coinbase returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data struct {
			Amount string `json:"amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("coinbase payload malformed: %w", err)
	}

	price, err := decimal.NewFromString(payload.Data.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coinbase price %q not a number: %w", payload.Data.Amount, err)
	}

	return price, nil
}
