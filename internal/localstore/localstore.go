package localstore

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Blob is one named value in the store. The history collection lives in a
// single row, rewritten wholesale on every mutation.
type Blob struct {
	bun.BaseModel `bun:"table:kv_blobs,alias:kv"`
	Key           string    `bun:"key,pk"`
	Value         []byte    `bun:"value,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}

// Store is a small key/value blob store backed by an embedded sqlite file.
type Store struct {
	db *bun.DB
}

func Open(path string, debug bool) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db}, nil
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*Blob)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the blob under key. The second result reports whether the key
// exists at all.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob := new(Blob)
	err := s.db.NewSelect().Model(blob).Where("key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob.Value, true, nil
}

// Set writes the blob under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	blob := &Blob{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(blob).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Delete removes the blob under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().Model((*Blob)(nil)).Where("key = ?", key).Exec(ctx)
	return err
}
