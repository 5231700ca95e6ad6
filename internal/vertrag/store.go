package vertrag

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/gigagreen/vertraege-service/pkg/logger"
	"github.com/gigagreen/vertraege-service/pkg/metrics"
)

// errNoBlob means the category was never durably saved; reads fall back to
// the seeded cache without noise beyond a log line.
var errNoBlob = errors.New("no durable blob for category")

// BlobStore is the minimal durable-object interface the store needs.
// internal/storage provides the MinIO-backed implementation; tests use an
// in-memory fake.
type BlobStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	GetBytes(ctx context.Context, key string) ([]byte, error)
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Store keeps one cached record list per category with the blob store as
// cross-instance durability. The cache is the source of truth for reads
// within a running process; the blob store is eventually consistent and
// only consulted on a cache miss.
//
// Concurrent saves follow last-write-wins: there is no version token on the
// blob, so two admin sessions writing at once can silently discard one
// another's change.
type Store struct {
	mu    sync.RWMutex
	cache map[Category][]Record
	// loaded tracks which categories were populated from (or written to)
	// the durable store, so seeded defaults still trigger a fetch on the
	// first read.
	loaded map[Category]bool
	blobs  BlobStore
}

// NewStore creates a store seeded with the built-in defaults for
// vertragsvorlagen and an empty gebaeudeversorgung list.
func NewStore(blobs BlobStore) *Store {
	now := time.Now().UTC()
	return &Store{
		blobs:  blobs,
		loaded: make(map[Category]bool),
		cache: map[Category][]Record{
			CategoryVertragsvorlagen: {
				{
					ID:        "1",
					Name:      "Nutzungsvertrag Dach",
					DriveLink: "https://drive.google.com/uc?export=download&id=1jsxasejayvBmdL4R6Kl3S8rw_xRR6cCO",
					CreatedAt: now,
				},
				{
					ID:        "2",
					Name:      "Stromliefervertrag",
					DriveLink: "https://drive.google.com/uc?export=download&id=1g3ikQHGLR9Morxj0v-XFezfen4YMSN11",
					CreatedAt: now,
				},
			},
			CategoryGebaeudeversorgung: {},
		},
	}
}

// Get returns the record list for cat. On a cache miss it repopulates the
// cache from the durable blob; on any fetch or parse failure it logs and
// falls back to the current cache contents.
func (s *Store) Get(ctx context.Context, cat Category) ([]Record, error) {
	if _, err := ParseCategory(string(cat)); err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, loaded := s.cache[cat], s.loaded[cat]
	s.mu.RUnlock()
	if loaded {
		return cloneRecords(cached), nil
	}

	records, err := s.fetch(ctx, cat)
	if err != nil {
		logger.Warnf("store: falling back to cached %s: %v", cat, err)
		return cloneRecords(cached), nil
	}

	s.mu.Lock()
	s.cache[cat] = records
	s.loaded[cat] = true
	s.mu.Unlock()
	return cloneRecords(records), nil
}

// Save replaces the record list for cat. The cache is updated first and is
// never rolled back; a failed durable write is reported as *StorageError,
// meaning "visible locally, not guaranteed durable".
func (s *Store) Save(ctx context.Context, cat Category, records []Record) ([]Record, error) {
	if _, err := ParseCategory(string(cat)); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}

	s.mu.Lock()
	s.cache[cat] = cloneRecords(records)
	s.loaded[cat] = true
	s.mu.Unlock()

	if err := s.persist(ctx, cat, records); err != nil {
		metrics.StoreSaveFailures.WithLabelValues(string(cat)).Inc()
		logger.Errorf("store: durable save for %s failed: %v", cat, err)
		return nil, &StorageError{Category: cat, Err: err}
	}
	metrics.StoreSaves.WithLabelValues(string(cat)).Inc()
	return records, nil
}

// fetch reads the newest durable blob for cat. An exact-name match is
// preferred over a prefix match to tolerate stale suffixed blobs left by
// earlier deployments.
func (s *Store) fetch(ctx context.Context, cat Category) ([]Record, error) {
	if s.blobs == nil {
		return nil, errors.New("no blob store configured")
	}
	name := cat.BlobName()
	keys, err := s.blobs.ListKeys(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errNoBlob
	}
	key := keys[0]
	for _, k := range keys {
		if k == name {
			key = k
			break
		}
	}

	data, err := s.blobs.GetBytes(ctx, key)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// persist overwrites the category blob in place under its fixed name, then
// best-effort removes stale prefix-matched blobs so writes replace rather
// than accumulate.
func (s *Store) persist(ctx context.Context, cat Category, records []Record) error {
	if s.blobs == nil {
		// memory-only mode: nothing durable to write, not a save failure
		logger.Warnf("store: no blob store configured, %s stays in-memory", cat)
		return nil
	}
	name := cat.BlobName()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := s.blobs.PutBytes(ctx, name, data, "application/json"); err != nil {
		return err
	}

	keys, err := s.blobs.ListKeys(ctx, name)
	if err != nil {
		logger.Warnf("store: stale blob listing for %s failed: %v", cat, err)
		return nil
	}
	for _, k := range keys {
		if k == name {
			continue
		}
		if err := s.blobs.Remove(ctx, k); err != nil {
			logger.Warnf("store: could not remove stale blob %s: %v", k, err)
		}
	}
	return nil
}

// NewID generates a time-based id with a random suffix. Uniqueness is
// best-effort at this scale (no guarantee under sub-millisecond clock
// collisions).
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatInt(rand.Int63n(1<<40), 36)
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}
