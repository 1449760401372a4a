package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	CoingeckoAPI = "https://api.coingecko.com/api/v3"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client.
// Empty baseURL falls back to the public API.
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = CoingeckoAPI
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &CoinGeckoClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// PriceResponse response from CoinGecko simple/price: asset -> currency -> price
type PriceResponse map[string]map[string]json.Number

// GetPrice gets the price of asset (e.g. "solana") in currency (e.g. "usd")
func (c *CoinGeckoClient) GetPrice(ctx context.Context, asset, currency string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", asset)
	query.Set("vs_currencies", currency)
	reqURL := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("failed to get price: status %d", resp.StatusCode)
	}

	var priceResp PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode price: %w", err)
	}

	raw, ok := priceResp[asset][currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("price for %s/%s missing from response", asset, currency)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price %q: %w", raw, err)
	}

	log.WithFields(log.Fields{
		"asset":    asset,
		"currency": currency,
		"price":    price.String(),
	}).Debug("fetched price")

	return price, nil
}
