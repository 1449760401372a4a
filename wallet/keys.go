package wallet

import (
	"context"

	"github.com/AlexZinkM/wallet-state/internal/crypto"

	"github.com/gagliardetto/solana-go"
)

// KeyResult is the outcome of a background key derivation
type KeyResult struct {
	Key solana.PrivateKey
	Err error
}

// DeriveKeysAsync derives the signing key for mnemonic off the caller's
// goroutine. Exactly one result is delivered; the channel is buffered so the
// worker never blocks if the caller stops listening.
func DeriveKeysAsync(mnemonic string) <-chan KeyResult {
	out := make(chan KeyResult, 1)
	go func() {
		key, err := crypto.DeriveKey(mnemonic)
		out <- KeyResult{Key: key, Err: err}
	}()
	return out
}

// awaitKey waits for a derivation result or ctx cancellation
func awaitKey(ctx context.Context, results <-chan KeyResult) (solana.PrivateKey, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		return res.Key, res.Err
	}
}
