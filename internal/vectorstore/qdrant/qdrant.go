package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"paperlens/internal/domain"
)

const scrollPage = 256

// tieSlack extra candidates are fetched so equal scores straddling k can be
// resolved by insertion order.
const tieSlack = 32

var errMissing = fmt.Errorf("%w: collection does not exist", domain.ErrIndexStorage)

// Store is a minimal REST client to Qdrant.
// Collections use cosine distance and are created on first insert.
type Store struct {
	url    string
	apiKey string
	prefix string
	client *http.Client

	seqMu   sync.Mutex
	lastSeq int64
}

type Config struct {
	URL    string
	APIKey string
	// CollectionPrefix is prepended to every collection name on the server.
	CollectionPrefix string
	Timeout          time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		prefix: cfg.CollectionPrefix,
		client: &http.Client{Timeout: timeout},
	}
}

// Collection returns a handle; nothing is sent to the server until first use.
func (s *Store) Collection(_ context.Context, name string) (domain.VectorIndex, error) {
	return &collection{store: s, name: name, remote: s.prefix + name}, nil
}

func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

type collection struct {
	store  *Store
	name   string
	remote string

	mu        sync.Mutex
	dimension int
}

type payload struct {
	ItemID   string          `json:"item_id"`
	Content  string          `json:"content"`
	Seq      int64           `json:"seq"`
	Metadata domain.Metadata `json:"metadata"`
}

func (c *collection) Name() string { return c.name }

func (c *collection) path(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", c.store.url, c.remote, suffix)
}

// ensure creates the remote collection when missing and returns its vector size.
func (c *collection) ensure(ctx context.Context, dimension int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension > 0 {
		return c.dimension, nil
	}
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	err := c.store.do(ctx, http.MethodGet, c.path(""), nil, &info)
	switch {
	case err == nil:
		c.dimension = info.Result.Config.Params.Vectors.Size
	case errors.Is(err, errMissing):
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if err := c.store.do(ctx, http.MethodPut, c.path(""), body, nil); err != nil {
			return 0, err
		}
		c.dimension = dimension
	default:
		return 0, err
	}
	return c.dimension, nil
}

func (c *collection) Insert(ctx context.Context, item domain.IndexedItem) error {
	if len(item.Embedding) == 0 {
		return fmt.Errorf("%w: %s: empty embedding for %s", domain.ErrIndexStorage, c.name, item.ID)
	}
	dim, err := c.ensure(ctx, len(item.Embedding))
	if err != nil {
		return err
	}
	if dim != len(item.Embedding) {
		return fmt.Errorf("%w: %s: vector dimension %d, collection has %d",
			domain.ErrIndexStorage, c.name, len(item.Embedding), dim)
	}
	point := map[string]any{
		"id":     uuid.NewString(),
		"vector": item.Embedding,
		"payload": payload{
			ItemID:   item.ID,
			Content:  item.Content,
			Seq:      c.store.nextSeq(),
			Metadata: item.Metadata,
		},
	}
	body := map[string]any{"points": []any{point}}
	return c.store.do(ctx, http.MethodPut, c.path("/points?wait=true"), body, nil)
}

func (c *collection) Query(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return []domain.Hit{}, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k + tieSlack,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64 `json:"score"`
			Payload payload `json:"payload"`
		} `json:"result"`
	}
	if err := c.store.do(ctx, http.MethodPost, c.path("/points/search"), req, &resp); err != nil {
		if errors.Is(err, errMissing) {
			return []domain.Hit{}, nil
		}
		return nil, err
	}
	// The server breaks score ties arbitrarily; restore insertion order.
	sort.SliceStable(resp.Result, func(i, j int) bool {
		a, b := resp.Result[i], resp.Result[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Payload.Seq < b.Payload.Seq
	})
	if len(resp.Result) > k {
		resp.Result = resp.Result[:k]
	}
	hits := make([]domain.Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.Hit{
			ID:       r.Payload.ItemID,
			Content:  r.Payload.Content,
			Metadata: r.Payload.Metadata,
			Distance: 1 - r.Score,
		})
	}
	return hits, nil
}

func (c *collection) All(ctx context.Context) ([]domain.Metadata, error) {
	out := []domain.Metadata{}
	var offset any
	for {
		req := map[string]any{
			"limit":        scrollPage,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload payload `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := c.store.do(ctx, http.MethodPost, c.path("/points/scroll"), req, &resp); err != nil {
			if errors.Is(err, errMissing) {
				return out, nil
			}
			return nil, err
		}
		for _, p := range resp.Result.Points {
			out = append(out, p.Payload.Metadata)
		}
		if resp.Result.NextPageOffset == nil {
			return out, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

// nextSeq returns a strictly increasing insertion stamp.
func (s *Store) nextSeq() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	seq := time.Now().UnixNano()
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	s.lastSeq = seq
	return seq
}

func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request: %v", domain.ErrIndexStorage, err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexStorage, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant %s %s: %v", domain.ErrIndexStorage, method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return errMissing
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: qdrant %s %s failed: %s", domain.ErrIndexStorage, method, url, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decoding qdrant response: %v", domain.ErrIndexStorage, err)
		}
	}
	return nil
}
