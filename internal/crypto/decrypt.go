package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/model"
)

var ErrInvalidPassphrase = errors.New("invalid passphrase")

// IsSealed reports whether data looks like a sealed envelope rather than a
// plain state document
func IsSealed(data []byte) bool {
	var probe struct {
		CipherText *string `json:"cipherText"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.CipherText != nil
}

// Open decrypts a sealed envelope produced by Seal.
// passphrase must be []byte for security (caller should zero it after use)
func Open(data, passphrase []byte) ([]byte, error) {
	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var sealed model.SealedFile
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sealed file: %w", err)
	}
	if sealed.Version != sealedVersion {
		return nil, fmt.Errorf("unsupported sealed file version %d", sealed.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(passphrase, salt, sealed.ScryptN)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return plaintext, nil
}
