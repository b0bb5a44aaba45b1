// CampaignWatch - Influence Campaign Detection and Threat Scoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campaignwatch

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/campaignwatch/internal/campaign"
	"github.com/tomtom215/campaignwatch/internal/logging"
	"github.com/tomtom215/campaignwatch/internal/metrics"
)

const snapshotPrefix = "campaign:"

var (
	// ErrNotFound is returned when no snapshot exists for a campaign ID.
	ErrNotFound = errors.New("snapshot not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("snapshot store is closed")

	// ErrEmptyID is returned by Get for an empty campaign ID.
	ErrEmptyID = errors.New("campaign ID cannot be empty")
)

// Config configures the snapshot store.
type Config struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// TTL expires snapshots; zero keeps them forever.
	TTL time.Duration

	// GCInterval is how often Serve runs value log GC.
	GCInterval time.Duration
	GCRatio    float64
}

// DefaultConfig returns the production defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		TTL:        7 * 24 * time.Hour,
		GCInterval: 10 * time.Minute,
		GCRatio:    0.5,
	}
}

// Store keeps the latest scored snapshot per campaign ID in BadgerDB.
type Store struct {
	db     *badger.DB
	config Config

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the snapshot store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store path is required")
	}
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("ttl", cfg.TTL).
		Msg("Snapshot store opened")

	return &Store{db: db, config: cfg}, nil
}

func snapshotKey(id string) []byte {
	return []byte(snapshotPrefix + id)
}

// Record stores res as the latest snapshot of its campaign. Results
// without a campaign ID have no key and are skipped.
func (s *Store) Record(ctx context.Context, res campaign.Result) (err error) {
	if res.CampaignID == "" {
		logging.Ctx(ctx).Debug().Msg("Skipping snapshot without campaign ID")
		return nil
	}
	defer func() { metrics.RecordSnapshot("put", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(snapshotKey(res.CampaignID), data)
		if s.config.TTL > 0 {
			e = e.WithTTL(s.config.TTL)
		}
		return txn.SetEntry(e)
	})
}

// Get returns the latest snapshot for id.
func (s *Store) Get(ctx context.Context, id string) (*campaign.Result, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var res campaign.Result
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &res)
		})
	})
	if errors.Is(err, ErrNotFound) {
		metrics.RecordSnapshot("get", nil)
		return nil, err
	}
	metrics.RecordSnapshot("get", err)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete removes the snapshot for id. Deleting a missing snapshot is not
// an error.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	if id == "" {
		return ErrEmptyID
	}
	defer func() { metrics.RecordSnapshot("delete", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(id))
	})
}

// IDs returns the campaign IDs with a live snapshot, sorted.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ids := make([]string, 0)
	prefix := []byte(snapshotPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	metrics.RecordSnapshot("list", err)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// RunGC runs value log GC until nothing is left to rewrite.
func (s *Store) RunGC() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if s.config.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Serve runs periodic GC until ctx is canceled. It implements
// suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	interval := s.config.GCInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				logging.Warn().Err(err).Msg("Snapshot store GC failed")
			}
		}
	}
}

// String names the GC service for the supervisor.
func (s *Store) String() string {
	return "snapshot-store-gc"
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
