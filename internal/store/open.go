package store

import (
	"github.com/AlexZinkM/wallet-state/internal/client"
	"github.com/AlexZinkM/wallet-state/internal/config"
	"github.com/AlexZinkM/wallet-state/internal/storage"

	log "github.com/sirupsen/logrus"
)

// OpenPersister opens the backend selected by cfg. passphrase is only used
// by a sealed file store.
func OpenPersister(cfg *config.Config, passphrase []byte) (storage.Persister, error) {
	switch cfg.Storage {
	case config.StorageBadger:
		return storage.NewBadgerStore(cfg.DataDir, log.StandardLogger())
	default:
		if !cfg.Seal {
			passphrase = nil
		}
		return storage.NewFileStore(cfg.DataDir, passphrase)
	}
}

// Open wires a Store from cfg: persistence backend, rate-limited node
// clients and the CoinGecko price source. The state is not loaded yet.
func Open(cfg *config.Config, passphrase []byte) (*Store, error) {
	persister, err := OpenPersister(cfg, passphrase)
	if err != nil {
		return nil, err
	}

	prices := CoinGeckoPrices(
		client.NewCoinGeckoClient(cfg.PriceURL, cfg.HTTPTimeout),
		cfg.PriceAsset,
		cfg.Currency,
	)

	return New(persister, NewNodeDialer(cfg.RPCRate), prices, Options{
		DefaultURL:   cfg.RPCURL,
		TxLimit:      cfg.TxLimit,
		SendCooldown: cfg.SendCooldown,
	}), nil
}
