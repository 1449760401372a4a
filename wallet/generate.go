package wallet

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/crypto"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

const defaultQRSize = 256

// GenerateWallet builds a zero-balance wallet account, derives its keys and
// performs the initial balance refresh.
// An empty mnemonic creates a brand new wallet; otherwise the mnemonic is
// validated and imported.
func GenerateWallet(ctx context.Context, name, url, mnemonic string, node Node) (*WalletAccount, error) {
	if mnemonic == "" {
		var err error
		if mnemonic, err = crypto.NewMnemonic(); err != nil {
			return nil, err
		}
	} else {
		mnemonic = crypto.NormalizeMnemonic(mnemonic)
		if err := crypto.ValidateMnemonic(mnemonic); err != nil {
			return nil, err
		}
	}

	key, err := awaitKey(ctx, DeriveKeysAsync(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}

	acc := &WalletAccount{
		base:     newBase(name, key.PublicKey(), url),
		mnemonic: mnemonic,
		key:      key,
	}

	if err := acc.RefreshBalance(ctx, node); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"account": name,
		"address": acc.Address(),
	}).Info("wallet account ready")

	return acc, nil
}

// AddressQR generates QR code of address in base64 (PNG), for receiving funds
func (b *base) AddressQR(size int) (string, error) {
	if size <= 0 {
		size = defaultQRSize
	}

	qr, err := qrcode.New(b.Address(), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(size)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
