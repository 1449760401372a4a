package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const (
	snapshotKey = "state"
	gcInterval  = 30 * time.Minute
)

type snapshot struct {
	Data      []byte
	UpdatedAt time.Time
}

// BadgerStore keeps the snapshot as a single badgerhold record
type BadgerStore struct {
	store     *badgerhold.Store
	quit      chan struct{}
	closeOnce sync.Once
}

// NewBadgerStore opens the db under baseDbDir/state, or in memory when
// baseDbDir is empty
func NewBadgerStore(baseDbDir string, logger badger.Logger) (*BadgerStore, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "state")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	s := &BadgerStore{
		store: store,
		quit:  make(chan struct{}),
	}
	if len(dbDir) > 0 {
		go s.runValueLogGC()
	}
	return s, nil
}

// Save replaces the snapshot record
func (s *BadgerStore) Save(_ context.Context, data []byte) error {
	snap := snapshot{
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.Upsert(snapshotKey, &snap); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load returns the snapshot, or an empty payload when none was saved
func (s *BadgerStore) Load(_ context.Context) ([]byte, error) {
	var snap snapshot
	if err := s.store.Get(snapshotKey, &snap); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return snap.Data, nil
}

// Close stops the GC loop and closes the db. Later calls are no-ops.
func (s *BadgerStore) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		if err := s.store.Close(); err != nil {
			log.WithError(err).Warn("failed to close state db")
		}
	})
}

func (s *BadgerStore) runValueLogGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			if err := s.store.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		}
	}
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
