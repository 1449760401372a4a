package wallet

import (
	"github.com/AlexZinkM/wallet-state/internal/model"
)

// WatcherAccount tracks a third-party address without holding keys
type WatcherAccount struct {
	base
}

// NewWatcher creates a watch-only account for address
func NewWatcher(name, url, address string) (*WatcherAccount, error) {
	pubkey, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	return &WatcherAccount{base: newBase(name, pubkey, url)}, nil
}

// Type is always AccountTypeClient
func (w *WatcherAccount) Type() model.AccountType {
	return model.AccountTypeClient
}

// Record returns the persisted form, without key material
func (w *WatcherAccount) Record() model.AccountRecord {
	return w.record(model.AccountTypeClient)
}
