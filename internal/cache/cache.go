// Package cache memoizes analysis results between pipeline runs.
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// Cache is an in-memory result cache with optional TTL expiry and optional
// persistence through a Store. It implements analysis.ResultCache. All
// methods are safe for concurrent use and on a nil *Cache, where reads miss
// and writes are no-ops, so a nil pointer can be wired straight into
// analysis.Config to disable caching.
type Cache struct {
	mutex    sync.RWMutex
	clusters map[string]*analysis.ClusterFaceAnalysis
	photos   map[string][]scoring.FaceQualityRecord
	ttl      time.Duration // zero means entries never expire
	store    *Store        // nil means memory only
}

// New creates an empty cache. A zero ttl disables expiry.
func New(ttl time.Duration) *Cache {
	return &Cache{
		clusters: make(map[string]*analysis.ClusterFaceAnalysis),
		photos:   make(map[string][]scoring.FaceQualityRecord),
		ttl:      ttl,
	}
}

// NewPersistent creates a cache backed by store, pre-populated with every
// analysis the store holds. Cluster writes are persisted synchronously.
func NewPersistent(ttl time.Duration, store *Store) (*Cache, error) {
	c := New(ttl)
	c.store = store

	saved, err := store.LoadAll()
	if err != nil {
		return nil, err
	}
	for _, a := range saved {
		c.clusters[a.ClusterID] = a
	}
	return c, nil
}

// Cluster returns the cached analysis for clusterID if it exists, has not
// expired and was computed over the same number of photos. A mismatched
// photo count invalidates the entry.
func (c *Cache) Cluster(clusterID string, photoCount int) (*analysis.ClusterFaceAnalysis, bool) {
	if c == nil {
		return nil, false
	}

	c.mutex.RLock()
	cached, ok := c.clusters[clusterID]
	c.mutex.RUnlock()

	if !ok {
		return nil, false
	}
	if cached.PhotoCount != photoCount {
		return nil, false
	}
	if c.expired(cached.AnalyzedAt) {
		return nil, false
	}
	return cached, true
}

// SetCluster stores the analysis, replacing any previous entry for the
// cluster. With a persistent backend the entry is written through.
func (c *Cache) SetCluster(a *analysis.ClusterFaceAnalysis) {
	if c == nil {
		return
	}

	c.mutex.Lock()
	c.clusters[a.ClusterID] = a
	c.mutex.Unlock()

	if c.store != nil {
		if err := c.store.Save(a); err != nil {
			log.Printf("could not persist analysis for cluster %s: %v", a.ClusterID, err)
		}
	}
}

// PhotoFaces returns the cached face records for a single photo.
func (c *Cache) PhotoFaces(photoID string) ([]scoring.FaceQualityRecord, bool) {
	if c == nil {
		return nil, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	faces, ok := c.photos[photoID]
	return faces, ok
}

// SetPhotoFaces stores per-photo face records. Photo entries are memory only.
func (c *Cache) SetPhotoFaces(photoID string, faces []scoring.FaceQualityRecord) {
	if c == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.photos[photoID] = faces
}

// Clear drops one cluster entry; its per-photo records stay available for
// face ranking.
func (c *Cache) Clear(clusterID string) {
	if c == nil {
		return
	}

	c.mutex.Lock()
	delete(c.clusters, clusterID)
	c.mutex.Unlock()

	if c.store != nil {
		if err := c.store.Delete(clusterID); err != nil {
			log.Printf("could not remove persisted cluster %s: %v", clusterID, err)
		}
	}
}

// ClearAll empties the cache.
func (c *Cache) ClearAll() {
	if c == nil {
		return
	}

	c.mutex.Lock()
	c.clusters = make(map[string]*analysis.ClusterFaceAnalysis)
	c.photos = make(map[string][]scoring.FaceQualityRecord)
	c.mutex.Unlock()

	if c.store != nil {
		if err := c.store.DeleteAll(); err != nil {
			log.Printf("could not empty persisted cache: %v", err)
		}
	}
}

// Statistics describes the current cache content.
type Statistics struct {
	ClusterCount int `json:"cluster_count"`
	PhotoCount   int `json:"photo_count"`
	FaceCount    int `json:"face_count"`
}

// Stats counts cached clusters, photos and faces.
func (c *Cache) Stats() Statistics {
	if c == nil {
		return Statistics{}
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	stats := Statistics{
		ClusterCount: len(c.clusters),
		PhotoCount:   len(c.photos),
	}
	for _, faces := range c.photos {
		stats.FaceCount += len(faces)
	}
	return stats
}

func (c *Cache) expired(analyzedAt time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return time.Since(analyzedAt) > c.ttl
}
