package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
)

// WalletAccount is an account whose keys derive from a mnemonic we hold
type WalletAccount struct {
	base
	mnemonic string
	key      solana.PrivateKey // nil until derived
}

// Type is always AccountTypeWallet
func (w *WalletAccount) Type() model.AccountType {
	return model.AccountTypeWallet
}

// Mnemonic returns the seed phrase of the account
func (w *WalletAccount) Mnemonic() string {
	return w.mnemonic
}

// PrivateKey returns the signing key, deriving it on first use for
// restored accounts
func (w *WalletAccount) PrivateKey(ctx context.Context) (solana.PrivateKey, error) {
	if w.key != nil {
		return w.key, nil
	}

	key, err := awaitKey(ctx, DeriveKeysAsync(w.mnemonic))
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	// Verify mnemonic matches the stored address
	if !key.PublicKey().Equals(w.pubkey) {
		return nil, fmt.Errorf("mnemonic does not match address %s", w.Address())
	}

	w.key = key
	return key, nil
}

// Record returns the persisted form, mnemonic included
func (w *WalletAccount) Record() model.AccountRecord {
	rec := w.record(model.AccountTypeWallet)
	rec.Mnemonic = w.mnemonic
	return rec
}
