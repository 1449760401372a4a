package crypto

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

const (
	mnemonicEntropyBits = 256 // 24 words
	hardenedOffset      = 0x80000000
)

// SolanaDerivationPath is m/44'/501'/0'/0', the path used by common Solana wallets
var SolanaDerivationPath = []uint32{44, 501, 0, 0}

// NewMnemonic generates a fresh 24 word BIP-39 mnemonic
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace and lowercases the words
func NormalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// ValidateMnemonic checks word list membership and checksum
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic)) {
		return model.ErrInvalidMnemonic
	}
	return nil
}

// DeriveKey derives the Solana signing key for mnemonic along
// SolanaDerivationPath (SLIP-0010, ed25519, hardened only)
func DeriveKey(mnemonic string) (solana.PrivateKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidMnemonic, err)
	}
	defer clear(seed)

	key, chainCode := slip10Master(seed)
	for _, index := range SolanaDerivationPath {
		key, chainCode = slip10Child(key, chainCode, index+hardenedOffset)
	}
	defer clear(key)

	return solana.PrivateKey(ed25519.NewKeyFromSeed(key)), nil
}

func slip10Master(seed []byte) (key, chainCode []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

func slip10Child(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 1+len(key)+4)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
