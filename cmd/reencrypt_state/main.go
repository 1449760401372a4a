// One-off: seal the state file with a new passphrase. A plain file is sealed,
// a sealed one is opened with the current passphrase first.
// Usage: go run ./cmd/reencrypt_state
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/wallet-state/internal/config"
	"github.com/AlexZinkM/wallet-state/internal/crypto"
	"github.com/AlexZinkM/wallet-state/internal/storage"
	"github.com/AlexZinkM/wallet-state/wallet"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()
	if cfg.Storage != config.StorageFile {
		return fmt.Errorf("storage backend %q has no state file", cfg.Storage)
	}

	current, err := openCurrent(cfg.DataDir)
	if err != nil {
		return err
	}
	data, err := current.Load(ctx)
	current.Close()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("no state file to re-encrypt")
	}

	state := wallet.FromJSON(data)
	if state.Len() == 0 {
		return errors.New("state file holds no readable accounts, refusing to overwrite")
	}

	newPass, err := promptTwice()
	if err != nil {
		return err
	}
	defer clear(newPass)

	next, err := storage.NewFileStore(cfg.DataDir, newPass)
	if err != nil {
		return err
	}
	defer next.Close()

	if err := next.Save(ctx, data); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"path":     next.Path(),
		"accounts": state.Len(),
	}).Info("state file sealed with new passphrase")
	return nil
}

func openCurrent(dir string) (*storage.FileStore, error) {
	plain, err := storage.NewFileStore(dir, nil)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(plain.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if !crypto.IsSealed(raw) {
		return plain, nil
	}

	if err := config.PromptForPassphrase("Current passphrase: "); err != nil {
		return nil, err
	}
	pass, err := config.GetPassphraseBytes()
	if err != nil {
		return nil, err
	}
	defer clear(pass)

	return storage.NewFileStore(dir, pass)
}

func promptTwice() ([]byte, error) {
	if err := config.PromptForPassphrase("New passphrase: "); err != nil {
		return nil, err
	}
	first, err := config.GetPassphraseBytes()
	if err != nil {
		return nil, err
	}

	if err := config.PromptForPassphrase("Repeat new passphrase: "); err != nil {
		clear(first)
		return nil, err
	}
	second, err := config.GetPassphraseBytes()
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if !bytes.Equal(first, second) {
		clear(first)
		return nil, errors.New("passphrases do not match")
	}
	return first, nil
}
