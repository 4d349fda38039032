// Package gallery keeps an in-memory copy of enrolled face embeddings and
// backfills embeddings that have not been computed yet.
package gallery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/kozaktomas/lab-kiosk/internal/database"
	"github.com/kozaktomas/lab-kiosk/internal/embedder"
	"github.com/kozaktomas/lab-kiosk/internal/facematch"
	"github.com/kozaktomas/lab-kiosk/internal/imaging"
	"github.com/kozaktomas/lab-kiosk/internal/logging"
	"github.com/kozaktomas/lab-kiosk/internal/storage"
)

// RefreshReport summarizes one backfill pass.
type RefreshReport struct {
	Candidates int   // users without an embedding at the start of the pass
	Computed   int   // embeddings computed and saved
	Failed     int   // users left without an embedding
	Skipped    int   // users another pass was already computing, or had computed
	Err        error // per-user failures, combined
}

// ProgressFunc is called after each candidate is processed.
type ProgressFunc func(done, total int)

// Cache is a read-through, write-back cache over the gallery store.
type Cache struct {
	store     database.GalleryStore
	photos    storage.PhotoSource
	extractor embedder.Extractor
	reload    time.Duration
	now       func() time.Time
	log       logging.Logger

	mu       sync.RWMutex
	entries  map[string][]float32
	loaded   bool
	loadedAt time.Time
	gen      uint64
	written  map[string]uint64   // user ID -> generation of its last write-back
	inflight map[string]struct{} // users whose backfill is running in some pass

	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// NewCache creates a cache. A reload interval of 0 reloads from the store on every GetAll.
func NewCache(store database.GalleryStore, photos storage.PhotoSource, extractor embedder.Extractor, reload time.Duration, opts ...Option) *Cache {
	c := &Cache{
		store:     store,
		photos:    photos,
		extractor: extractor,
		reload:    reload,
		now:       time.Now,
		log:       logging.Nop(),
		entries:   make(map[string][]float32),
		written:   make(map[string]uint64),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.loaded || c.reload <= 0 || c.now().Sub(c.loadedAt) >= c.reload
}

// GetAll returns every enrolled user with an embedding, ordered by user ID.
// The returned embeddings are shared and must not be modified.
func (c *Cache) GetAll(ctx context.Context) (facematch.Gallery, error) {
	if c.stale() {
		if _, err, _ := c.group.Do("load", func() (any, error) {
			return nil, c.load(ctx)
		}); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	gallery := make(facematch.Gallery, 0, len(c.entries))
	for id, emb := range c.entries {
		gallery = append(gallery, facematch.Entry{UserID: id, Embedding: emb})
	}
	c.mu.RUnlock()

	sort.Slice(gallery, func(i, j int) bool { return gallery[i].UserID < gallery[j].UserID })
	return gallery, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) load(ctx context.Context) error {
	c.mu.RLock()
	startGen := c.gen
	c.mu.RUnlock()

	users, err := c.store.ListEnrolledWithEmbedding(ctx)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	entries := make(map[string][]float32, len(users))
	for _, u := range users {
		entries[u.UserID] = u.Embedding
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Write-backs that landed while the store was being read win over the snapshot.
	for id, g := range c.written {
		if g > startGen {
			if emb, ok := c.entries[id]; ok {
				entries[id] = emb
			}
			continue
		}
		delete(c.written, id)
	}
	c.entries = entries
	c.loaded = true
	c.loadedAt = c.now()
	return nil
}

func (c *Cache) put(userID string, emb []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries[userID] = emb
	c.written[userID] = c.gen
}

// Refresh computes embeddings for users that have a photo but no embedding.
// Concurrent passes run independently under their own context; a user whose
// backfill is already running elsewhere is skipped rather than waited for.
// Per-user failures are counted in the report; only a failure to list
// candidates is returned as an error.
func (c *Cache) Refresh(ctx context.Context) (RefreshReport, error) {
	return c.RefreshWithProgress(ctx, nil)
}

// RefreshWithProgress is Refresh with a progress callback.
func (c *Cache) RefreshWithProgress(ctx context.Context, progress ProgressFunc) (RefreshReport, error) {
	return c.refresh(ctx, progress)
}

// claim marks userID as being backfilled. It fails when another pass holds the
// user or wrote its embedding back after since.
func (c *Cache) claim(userID string, since uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[userID]; busy {
		return false
	}
	if c.written[userID] > since {
		return false
	}
	c.inflight[userID] = struct{}{}
	return true
}

func (c *Cache) release(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, userID)
}

func (c *Cache) refresh(ctx context.Context, progress ProgressFunc) (RefreshReport, error) {
	var report RefreshReport

	c.mu.RLock()
	since := c.gen
	c.mu.RUnlock()

	users, err := c.store.ListMissingEmbeddings(ctx)
	if err != nil {
		return report, fmt.Errorf("list users without embeddings: %w", err)
	}
	report.Candidates = len(users)

	for i, u := range users {
		if err := ctx.Err(); err != nil {
			report.Failed += len(users) - i
			return report, err
		}

		if !c.claim(u.UserID, since) {
			report.Skipped++
			c.log.Debug(ctx, "backfill already handled elsewhere", "user_id", u.UserID)
		} else if err := c.backfillUser(ctx, u); err != nil {
			report.Failed++
			report.Err = multierr.Append(report.Err, fmt.Errorf("%s: %w", u.UserID, err))
			c.log.Warn(ctx, "backfill failed", "user_id", u.UserID, "error", err)
		} else {
			report.Computed++
			c.log.Debug(ctx, "backfilled embedding", "user_id", u.UserID)
		}

		if progress != nil {
			progress(i+1, len(users))
		}
	}

	if report.Candidates > 0 {
		c.log.Info(ctx, "gallery refresh finished",
			"candidates", report.Candidates, "computed", report.Computed, "failed", report.Failed, "skipped", report.Skipped)
	}
	return report, nil
}

func (c *Cache) backfillUser(ctx context.Context, u database.EnrolledUser) error {
	defer c.release(u.UserID)

	data, err := c.photos.FetchPhoto(ctx, u.PhotoPath)
	if err != nil {
		return err
	}
	if _, _, err := imaging.Decode(data); err != nil {
		return err
	}

	emb, err := c.extractor.Compute(ctx, data)
	if err != nil {
		return fmt.Errorf("compute embedding: %w", err)
	}

	if err := c.store.SaveEmbedding(ctx, u.UserID, emb); err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	c.put(u.UserID, emb)
	return nil
}
