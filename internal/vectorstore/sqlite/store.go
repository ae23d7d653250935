// Package sqlite persists vector collections in a single SQLite file.
//
// Embeddings are stored as little-endian float32 blobs next to the item's
// primary content and JSON-encoded metadata. Queries scan the collection and
// rank in process.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"paperlens/internal/domain"
	"paperlens/internal/vectorstore/vecmath"
)

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name      TEXT PRIMARY KEY,
	space     TEXT NOT NULL,
	dimension INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS items (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL REFERENCES collections(name),
	id         TEXT NOT NULL,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	embedding  BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_collection ON items(collection, seq);
`

// Store is a SQLite-backed set of named collections.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %v", domain.ErrIndexStorage, err)
	}

	db, err := sqlx.Connect("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", domain.ErrIndexStorage, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", domain.ErrIndexStorage, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns the named cosine collection, creating it if needed.
func (s *Store) Collection(ctx context.Context, name string) (domain.VectorIndex, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, space, dimension) VALUES (?, ?, 0)`,
		name, domain.CosineSpace)
	if err != nil {
		return nil, fmt.Errorf("%w: creating collection %s: %v", domain.ErrIndexStorage, name, err)
	}
	return &collection{store: s, name: name}, nil
}

type itemRow struct {
	ID        string `db:"id"`
	Content   string `db:"content"`
	Metadata  string `db:"metadata"`
	Embedding []byte `db:"embedding"`
}

type collection struct {
	store *Store
	name  string
}

func (c *collection) Name() string { return c.name }

func (c *collection) Insert(ctx context.Context, item domain.IndexedItem) error {
	if len(item.Embedding) == 0 {
		return fmt.Errorf("%w: %s: empty embedding for %s", domain.ErrIndexStorage, c.name, item.ID)
	}
	meta, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", domain.ErrIndexStorage, err)
	}

	tx, err := c.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexStorage, err)
	}
	defer tx.Rollback()

	var dim int
	if err := tx.GetContext(ctx, &dim, `SELECT dimension FROM collections WHERE name = ?`, c.name); err != nil {
		return fmt.Errorf("%w: reading collection %s: %v", domain.ErrIndexStorage, c.name, err)
	}
	switch {
	case dim == 0:
		if _, err := tx.ExecContext(ctx, `UPDATE collections SET dimension = ? WHERE name = ?`, len(item.Embedding), c.name); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrIndexStorage, err)
		}
	case dim != len(item.Embedding):
		return fmt.Errorf("%w: %s: vector dimension %d, collection has %d",
			domain.ErrIndexStorage, c.name, len(item.Embedding), dim)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (collection, id, content, metadata, embedding) VALUES (?, ?, ?, ?, ?)`,
		c.name, item.ID, item.Content, string(meta), float32SliceToBytes(item.Embedding))
	if err != nil {
		return fmt.Errorf("%w: inserting %s: %v", domain.ErrIndexStorage, item.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexStorage, err)
	}
	return nil
}

func (c *collection) Query(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return []domain.Hit{}, nil
	}
	var dim int
	err := c.store.db.GetContext(ctx, &dim, `SELECT dimension FROM collections WHERE name = ?`, c.name)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && dim == 0) {
		return []domain.Hit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading collection %s: %v", domain.ErrIndexStorage, c.name, err)
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: %s: query dimension %d, collection has %d",
			domain.ErrIndexStorage, c.name, len(vector), dim)
	}

	var rows []itemRow
	err = c.store.db.SelectContext(ctx, &rows,
		`SELECT id, content, metadata, embedding FROM items WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", domain.ErrIndexStorage, c.name, err)
	}

	hits := make([]domain.Hit, len(rows))
	distances := make([]float64, len(rows))
	for i, r := range rows {
		meta, err := decodeMetadata(r.Metadata)
		if err != nil {
			return nil, err
		}
		hits[i] = domain.Hit{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: meta,
			Distance: vecmath.CosineDistance(bytesToFloat32Slice(r.Embedding), vector),
		}
		distances[i] = hits[i].Distance
	}

	ranked := vecmath.Rank(distances, k)
	out := make([]domain.Hit, len(ranked))
	for i, j := range ranked {
		out[i] = hits[j]
	}
	return out, nil
}

func (c *collection) All(ctx context.Context) ([]domain.Metadata, error) {
	var metas []string
	err := c.store.db.SelectContext(ctx, &metas,
		`SELECT metadata FROM items WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", domain.ErrIndexStorage, c.name, err)
	}

	out := make([]domain.Metadata, 0, len(metas))
	for _, raw := range metas {
		m, err := decodeMetadata(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeMetadata(s string) (domain.Metadata, error) {
	var m domain.Metadata
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata: %v", domain.ErrIndexStorage, err)
	}
	return m, nil
}

// float32SliceToBytes converts a []float32 to little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
