// package trackcache fronts a provider's FetchTrack/SearchByQuery calls
// with a two-tier cache: an in-process LRU for hot lookups within a single
// command invocation, backed by a durable SQLite store so tracks already
// seen by any previous grit command never need a second round trip.
package trackcache

import (
	"container/list"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

const artistSeparator = "\x1f"

// Cache is a two-tier track lookup cache: an in-memory LRU in front of a
// SQLite-backed durable store.
type Cache struct {
	db       *sql.DB
	capacity int

	mu    sync.Mutex
	lru   *list.List
	items map[string]*list.Element
}

type cacheEntry struct {
	key   string
	track models.Track
}

// Open opens (creating if absent) a SQLite cache database at path and
// runs its migrations. capacity bounds the in-process LRU tier; it does
// not bound the durable SQLite tier.
func Open(path string, capacity int) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track cache database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{
		db:       db,
		capacity: capacity,
		lru:      list.New(),
		items:    make(map[string]*list.Element),
	}, nil
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(kind models.ProviderKind, id string) string {
	return string(kind) + ":" + id
}

// GetOrFetchTrack returns the track identified by (kind, id), consulting
// the LRU tier, then the SQLite tier, then falling back to fetch and
// populating both tiers with the result.
func (c *Cache) GetOrFetchTrack(ctx context.Context, kind models.ProviderKind, id string, fetch func(context.Context) (models.Track, error)) (models.Track, error) {
	key := cacheKey(kind, id)

	if t, ok := c.getLRU(key); ok {
		return t, nil
	}

	t, ok, err := c.loadFromDB(kind, id)
	if err != nil {
		return models.Track{}, err
	}
	if ok {
		c.putLRU(key, t)
		return t, nil
	}

	t, err = fetch(ctx)
	if err != nil {
		return models.Track{}, err
	}

	if err := c.saveToDB(t); err != nil {
		return models.Track{}, err
	}
	c.putLRU(key, t)
	return t, nil
}

// CacheSearchResults persists every track from a SearchByQuery response so
// a later FetchTrack by id is served from cache instead of the network.
func (c *Cache) CacheSearchResults(tracks []models.Track) error {
	for _, t := range tracks {
		if err := c.saveToDB(t); err != nil {
			return err
		}
		c.putLRU(cacheKey(t.Provider, t.ID), t)
	}
	return nil
}

func (c *Cache) getLRU(key string) (models.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return models.Track{}, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).track, true
}

func (c *Cache) putLRU(key string, t models.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).track = t
		c.lru.MoveToFront(el)
		return
	}

	el := c.lru.PushFront(&cacheEntry{key: key, track: t})
	c.items[key] = el

	if c.capacity > 0 && c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *Cache) loadFromDB(kind models.ProviderKind, id string) (models.Track, bool, error) {
	row := c.db.QueryRow(
		`SELECT name, artists, duration_ms, metadata FROM tracks WHERE provider = ? AND id = ?`,
		string(kind), id,
	)

	var name, artists string
	var durationMS int
	var metadata sql.NullString

	if err := row.Scan(&name, &artists, &durationMS, &metadata); err != nil {
		if err == sql.ErrNoRows {
			return models.Track{}, false, nil
		}
		return models.Track{}, false, fmt.Errorf("failed to load cached track: %w", err)
	}

	t := models.Track{
		Provider:   kind,
		ID:         id,
		Name:       name,
		DurationMS: durationMS,
	}
	if artists != "" {
		t.Artists = strings.Split(artists, artistSeparator)
	}
	if metadata.Valid && metadata.String != "" {
		m := map[string]string{}
		if err := shared.UnmarshalJSON([]byte(metadata.String), &m); err == nil {
			t.Metadata = m
		}
	}

	return t, true, nil
}

func (c *Cache) saveToDB(t models.Track) error {
	var metadata string
	if len(t.Metadata) > 0 {
		data, err := shared.MarshalJSON(t.Metadata)
		if err != nil {
			return err
		}
		metadata = string(data)
	}

	_, err := c.db.Exec(
		`INSERT INTO tracks (provider, id, name, artists, duration_ms, metadata)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(provider, id) DO UPDATE SET
		   name = excluded.name, artists = excluded.artists,
		   duration_ms = excluded.duration_ms, metadata = excluded.metadata`,
		string(t.Provider), t.ID, t.Name, strings.Join(t.Artists, artistSeparator), t.DurationMS, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}
