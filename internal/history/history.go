package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"docanalyze/internal/models"

	"github.com/rs/zerolog/log"
)

// StorageKey is the well-known key the whole history collection lives under.
const StorageKey = "docanalyzeHistory"

var ErrPersistence = errors.New("history persistence failed")

var ErrNotFound = errors.New("history entry not found")

// BlobStore is the persistence the history log runs on: one opaque value per
// key, rewritten wholesale.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is an append-only log of finished sessions, newest first.
type Store struct {
	blobs BlobStore
}

func NewStore(blobs BlobStore) *Store {
	return &Store{blobs: blobs}
}

// Append inserts entry at the head of the collection and rewrites the blob.
// On failure nothing is written and the caller's state must stay intact.
func (s *Store) Append(ctx context.Context, entry models.HistoryEntry) error {
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}

	updated := append([]models.HistoryEntry{entry}, entries...)
	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("%w: encoding collection: %v", ErrPersistence, err)
	}
	if err := s.blobs.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Debug().Str("id", entry.ID).Int("total", len(updated)).Msg("history entry appended")
	return nil
}

// List returns all entries sorted by CreatedAt descending. Append already
// keeps the blob newest-first, but that layout is not relied upon.
func (s *Store) List(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, id string) (*models.HistoryEntry, error) {
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes the whole collection. Irreversible.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.blobs.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) ([]models.HistoryEntry, error) {
	data, ok, err := s.blobs.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding collection: %v", ErrPersistence, err)
	}
	return entries, nil
}
