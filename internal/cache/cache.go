// Package cache keeps the last loaded copy of each list view. Snapshots are
// replaced wholesale on an explicit refresh and never expire on their own:
// the backend offers no way to learn that a list changed.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"skaladash/internal/client"
	"skaladash/internal/envelope"
)

type Kind int

const (
	Players Kind = iota
	Stocks
	Watchlist
	Ranking
)

var Kinds = []Kind{Ranking, Players, Stocks, Watchlist}

func (k Kind) String() string {
	switch k {
	case Players:
		return "players"
	case Stocks:
		return "stocks"
	case Watchlist:
		return "watchlist"
	case Ranking:
		return "ranking"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Record map[string]any

type Snapshot []Record

// Getter is the slice of the API client the cache needs.
type Getter interface {
	Get(ctx context.Context, path string) envelope.Outcome
}

type source struct {
	path string
	// paged list endpoints wrap records as body.list; the rest return a bare array.
	paged bool
}

var sources = map[Kind]source{
	Players:   {path: client.PathPlayersList, paged: true},
	Stocks:    {path: client.PathStocksList, paged: true},
	Watchlist: {path: client.PathWatchlist},
	Ranking:   {path: client.PathRanking},
}

type Cache struct {
	api  Getter
	page client.Page

	mu    sync.RWMutex
	snaps map[Kind]Snapshot
}

func New(api Getter, page client.Page) *Cache {
	return &Cache{api: api, page: page, snaps: map[Kind]Snapshot{}}
}

// Refresh loads kind from the backend. On success the cached snapshot is
// replaced and the number of records returned; on failure the previous
// snapshot is left as it was.
func (c *Cache) Refresh(ctx context.Context, kind Kind) (int, envelope.Outcome) {
	src, ok := sources[kind]
	if !ok {
		return 0, envelope.TransportFailure(fmt.Sprintf("unknown view %s", kind))
	}
	path := src.path
	if src.paged {
		path = c.page.Path(path)
	}
	out := c.api.Get(ctx, path)
	if !out.OK() {
		return 0, out
	}
	snap, err := extract(envelope.BodyOf(out), src.paged)
	if err != nil {
		return 0, envelope.TransportFailure("")
	}
	c.Set(kind, snap)
	return len(snap), out
}

func (c *Cache) Get(kind Kind) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.snaps[kind])
}

// Set replaces the snapshot for kind. Player records are redacted here, so
// nothing stored in the cache ever holds a credential.
func (c *Cache) Set(kind Kind, snap Snapshot) {
	stored := clone(snap)
	if kind == Players {
		stored = Redact(stored)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if stored == nil {
		stored = Snapshot{}
	}
	c.snaps[kind] = stored
}

func (c *Cache) Drop(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, kind)
}

// Loaded reports whether kind has been set at least once since the last drop.
func (c *Cache) Loaded(kind Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.snaps[kind]
	return ok
}

func extract(body json.RawMessage, paged bool) (Snapshot, error) {
	if len(body) == 0 {
		return Snapshot{}, nil
	}
	if paged {
		var wrapper struct {
			List json.RawMessage `json:"list"`
		}
		if err := decode(body, &wrapper); err != nil {
			return nil, fmt.Errorf("decode paged list: %w", err)
		}
		body = wrapper.List
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return Snapshot{}, nil
		}
	}
	var items []any
	if err := decode(body, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	snap := make(Snapshot, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			// Scalars show up as a single "value" column.
			rec = map[string]any{"value": item}
		}
		snap = append(snap, Record(rec))
	}
	return snap, nil
}

func decode(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}

func clone(snap Snapshot) Snapshot {
	if snap == nil {
		return nil
	}
	out := make(Snapshot, len(snap))
	for i, rec := range snap {
		out[i] = Record(cloneMap(rec))
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Record:
		return Record(cloneMap(t))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
