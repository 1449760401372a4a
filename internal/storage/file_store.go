package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlexZinkM/wallet-state/internal/crypto"

	log "github.com/sirupsen/logrus"
)

const (
	StateFileName = "state.json"

	dirPerm  = 0700
	filePerm = 0600
)

// FileStore keeps the snapshot in a single file. With a passphrase the file
// is sealed, otherwise it is plain JSON.
type FileStore struct {
	path       string
	passphrase []byte
	params     crypto.ScryptParams
}

// NewFileStore creates a store writing to dir/state.json. An empty
// passphrase disables sealing.
func NewFileStore(dir string, passphrase []byte) (*FileStore, error) {
	return newFileStore(dir, passphrase, crypto.DefaultScryptParams)
}

func newFileStore(dir string, passphrase []byte, params crypto.ScryptParams) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	var pass []byte
	if len(passphrase) > 0 {
		pass = make([]byte, len(passphrase))
		copy(pass, passphrase)
	}

	return &FileStore{
		path:       filepath.Join(dir, StateFileName),
		passphrase: pass,
		params:     params,
	}, nil
}

// Path returns the state file location
func (s *FileStore) Path() string {
	return s.path
}

// Sealed reports whether saves are encrypted
func (s *FileStore) Sealed() bool {
	return len(s.passphrase) > 0
}

// Save atomically replaces the state file
func (s *FileStore) Save(_ context.Context, data []byte) error {
	out := data
	if s.Sealed() {
		sealed, err := crypto.Seal(data, s.passphrase, s.params)
		if err != nil {
			return err
		}
		out = sealed
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), StateFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after rename

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	log.WithFields(log.Fields{
		"path":   s.path,
		"sealed": s.Sealed(),
	}).Debug("state saved")
	return nil
}

// Load reads the state file. A missing file yields an empty payload; a
// sealed file without a passphrase, or with the wrong one, is an error.
func (s *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if !crypto.IsSealed(data) {
		// Plain file, sealed on next save when a passphrase is set
		return data, nil
	}
	if !s.Sealed() {
		return nil, fmt.Errorf("state file %s is sealed: %w", s.path, crypto.ErrInvalidPassphrase)
	}
	return crypto.Open(data, s.passphrase)
}

// Close wipes the passphrase from memory
func (s *FileStore) Close() {
	clear(s.passphrase)
	s.passphrase = nil
}
