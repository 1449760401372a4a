package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/AlexZinkM/wallet-state/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	sealedVersion = 1
	scryptR       = 8
	scryptP       = 1
	scryptKeyLen  = 32
	saltLen       = 32
	nonceLen      = 12
)

// ScryptParams holds the KDF cost.
//
// N=2^18 (~256MB RAM, 0.5-2s) still works on phones; N=2^20 does not
// fit Android per-app memory limits.
type ScryptParams struct {
	N int
}

// DefaultScryptParams is used for state files written by the app
var DefaultScryptParams = ScryptParams{N: 1 << 18}

// Seal encrypts plaintext with a key derived from passphrase and returns the
// JSON encoded sealed envelope.
// passphrase must be []byte for security (caller should zero it after use)
func Seal(plaintext, passphrase []byte, params ScryptParams) ([]byte, error) {
	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(passphrase, salt, params.N)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	sealed := model.SealedFile{
		Version:    sealedVersion,
		ScryptN:    params.N,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(sealed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sealed file: %w", err)
	}
	return data, nil
}

// newGCM derives the AES-256 key with scrypt and wraps it in GCM
func newGCM(passphrase, salt []byte, n int) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
