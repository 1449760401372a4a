package store

import (
	"context"
	"sync"

	"github.com/AlexZinkM/wallet-state/internal/client"
	"github.com/AlexZinkM/wallet-state/wallet"

	"github.com/shopspring/decimal"
)

// Dialer returns the node serving url
type Dialer func(url string) wallet.PayNode

// NewNodeDialer returns a Dialer that keeps one rate-limited client per URL
func NewNodeDialer(requestsPerSecond int) Dialer {
	var (
		mu      sync.Mutex
		clients = make(map[string]*client.SolanaClient)
	)

	return func(url string) wallet.PayNode {
		mu.Lock()
		defer mu.Unlock()

		c, ok := clients[url]
		if !ok {
			c = client.NewSolanaClient(url, requestsPerSecond)
			clients[url] = c
		}
		return c
	}
}

// CoinGeckoPrices adapts the CoinGecko client to a wallet.PriceFunc
func CoinGeckoPrices(c *client.CoinGeckoClient, asset, currency string) wallet.PriceFunc {
	return func(ctx context.Context) (decimal.Decimal, error) {
		return c.GetPrice(ctx, asset, currency)
	}
}
