package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

const defaultCoinGeckoURL = "https://api.coingecko.com"

// CoinGecko reads the simple price from the CoinGecko public API. Kept last
// in the default ordering: it updates less often than the exchange feeds.
type CoinGecko struct {
	baseURL  string
	coinID   string // e.g. "bitcoin"
	currency string // e.g. "usd"
	client   *http.Client
}

func NewCoinGecko(baseURL, coinID, currency string, client *http.Client) *CoinGecko {
	if baseURL == "" {
		baseURL = defaultCoinGeckoURL
	}
	return &CoinGecko{baseURL: baseURL, coinID: coinID, currency: currency, client: client}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/simple/price?ids=%s&vs_currencies=%s", c.baseURL, c.coinID, c.currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	var payload map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko payload malformed: %w", err)
	}

	raw, ok := payload[c.coinID][c.currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko payload missing %s/%s", c.coinID, c.currency)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("coingecko price %q not a number: %w", raw.String(), err)
	}

	return price, nil
}
