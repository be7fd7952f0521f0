package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

const defaultBinanceURL = "https://api.binance.com"

// Binance reads the spot ticker price from the Binance public API.
type Binance struct {
	baseURL string
	symbol  string
	client  *http.Client
}

func NewBinance(baseURL, symbol string, client *http.Client) *Binance {
	if baseURL == "" {
		baseURL = defaultBinanceURL
	}
	return &Binance{baseURL: baseURL, symbol: symbol, client: client}
}

func (b *Binance) Name() string { return "binance" }

func (b *Binance) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", b.baseURL, b.symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("binance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("binance returned status %d", resp.StatusCode)
	}

	var payload struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("binance payload malformed: %w", err)
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("binance price %q not a number: %w", payload.Price, err)
	}

	return price, nil
}
