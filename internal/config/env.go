package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	envPrefix = "wallet"

	StorageFile   = "file"
	StorageBadger = "badger"
)

// Config contains all configuration parameters for the application.
// Note: Passphrase is prompted at runtime and stored in memory - use GetPassphraseBytes()
type Config struct {
	RPCURL       string        `envconfig:"RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	RPCRate      int           `envconfig:"RPC_RATE" default:"4"`
	PriceURL     string        `envconfig:"PRICE_URL" default:"https://api.coingecko.com/api/v3"`
	PriceAsset   string        `envconfig:"PRICE_ASSET" default:"solana"`
	Currency     string        `envconfig:"CURRENCY" default:"usd"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	DataDir      string        `envconfig:"DATA_DIR" default:".wallet"`
	Storage      string        `envconfig:"STORAGE" default:"file"`
	Seal         bool          `envconfig:"SEAL" default:"false"`
	TxLimit      int           `envconfig:"TX_LIMIT" default:"10"`
	// SendCooldown between two sends from the same account, 0 disables it
	SendCooldown time.Duration `envconfig:"SEND_COOLDOWN" default:"0s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads .env (if present) and configuration from WALLET_* environment
// variables, then applies the log level.
func Init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	cfg = c
	return nil
}

func (c *Config) validate() error {
	if c.Storage != StorageFile && c.Storage != StorageBadger {
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.TxLimit <= 0 {
		return fmt.Errorf("tx limit must be positive")
	}
	if c.Seal && c.Storage != StorageFile {
		return fmt.Errorf("sealing is only supported by the file backend")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

var passphraseBytes []byte

// PromptForPassphrase prompts the user for the state passphrase in the
// terminal. Input is not echoed and the result is kept in memory.
func PromptForPassphrase(prompt string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run interactively to enter passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("passphrase cannot be empty")
	}

	SetPassphrase(raw)
	clear(raw)
	return nil
}

// SetPassphrase stores a copy of p
func SetPassphrase(p []byte) {
	clear(passphraseBytes)
	passphraseBytes = make([]byte, len(p))
	copy(passphraseBytes, p)
}

// GetPassphraseBytes returns a copy of the passphrase stored in memory.
// Caller must zero the returned slice after use.
func GetPassphraseBytes() ([]byte, error) {
	if len(passphraseBytes) == 0 {
		return nil, errors.New("passphrase not set: call PromptForPassphrase first")
	}
	out := make([]byte, len(passphraseBytes))
	copy(out, passphraseBytes)
	return out, nil
}
