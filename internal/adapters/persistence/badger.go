package persistence

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/okian/esgbench/internal/domain/model"
)

// Key prefixes. Point keys carry a big-endian sequence so iteration
// replays in append order.
const (
	pointPrefix   = "dp|"
	profilePrefix = "pf|"
)

// BadgerJournal implements Journal on a badger key-value store.
type BadgerJournal struct {
	db     *badger.DB
	seq    atomic.Uint64
	mu     sync.Mutex
	closed bool
}

// Option applies a configuration option to badger journal setup.
type Option func(*badger.Options)

// WithInMemory keeps the journal entirely in memory (tests).
func WithInMemory() Option {
	return func(o *badger.Options) {
		o.InMemory = true
		o.Dir = ""
		o.ValueDir = ""
	}
}

// profileRecord is the stored shape of a profile plus privacy settings.
type profileRecord struct {
	Profile model.BenchmarkingProfile `json:"profile"`
	Privacy model.PrivacySettings     `json:"privacy"`
}

// OpenBadger opens (or creates) a journal at dir.
func OpenBadger(dir string, opts ...Option) (*BadgerJournal, error) {
	bopts := badger.DefaultOptions(dir)
	bopts.Logger = nil
	for _, opt := range opts {
		opt(&bopts)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &BadgerJournal{db: db}
	// Resume the sequence after the highest journaled point key.
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(pointPrefix)})
		defer it.Close()
		var last uint64
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if len(key) == len(pointPrefix)+8 {
				last = binary.BigEndian.Uint64(key[len(pointPrefix):])
			}
		}
		j.seq.Store(last)
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return j, nil
}

func pointKeyFor(seq uint64) []byte {
	key := make([]byte, len(pointPrefix)+8)
	copy(key, pointPrefix)
	binary.BigEndian.PutUint64(key[len(pointPrefix):], seq)
	return key
}

// AppendPoint records one accepted data point.
func (j *BadgerJournal) AppendPoint(_ context.Context, p model.MetricDataPoint) error {
	if j.isClosed() {
		return ErrClosed
	}
	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode point: %w", err)
	}
	key := pointKeyFor(j.seq.Add(1))
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
	if err != nil {
		return fmt.Errorf("append point: %w", err)
	}
	return nil
}

// SaveProfile records a profile and its privacy settings.
func (j *BadgerJournal) SaveProfile(_ context.Context, p model.BenchmarkingProfile, privacy model.PrivacySettings) error {
	if j.isClosed() {
		return ErrClosed
	}
	val, err := json.Marshal(profileRecord{Profile: p, Privacy: privacy})
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profilePrefix+p.OrganizationID), val)
	})
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// LoadPoints streams journaled points in append order.
func (j *BadgerJournal) LoadPoints(_ context.Context, fn func(model.MetricDataPoint) error) error {
	if j.isClosed() {
		return ErrClosed
	}
	return j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(pointPrefix), PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p model.MetricDataPoint
				if err := json.Unmarshal(val, &p); err != nil {
					return fmt.Errorf("decode point: %w", err)
				}
				return fn(p)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadProfiles streams journaled profiles.
func (j *BadgerJournal) LoadProfiles(_ context.Context, fn func(model.BenchmarkingProfile, model.PrivacySettings) error) error {
	if j.isClosed() {
		return ErrClosed
	}
	return j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(profilePrefix), PrefetchValues: true})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec profileRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("decode profile: %w", err)
				}
				return fn(rec.Profile, rec.Privacy)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying store.
func (j *BadgerJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.db.Close()
}

func (j *BadgerJournal) isClosed() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closed
}
