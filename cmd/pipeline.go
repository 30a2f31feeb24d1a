package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kozaktomas/burst-composer/internal/analysis"
	"github.com/kozaktomas/burst-composer/internal/cache"
	"github.com/kozaktomas/burst-composer/internal/config"
	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// imageExtensions lists the decodable photo formats.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// buildPipeline assembles the analyzer and its cache from configuration.
// The returned cleanup closes the persistent store when one is in use.
func buildPipeline(cfg *config.Config, concurrency int, onProgress func(analysis.ProgressInfo)) (*analysis.Analyzer, *cache.Cache, func(), error) {
	service := detect.NewFaceService(cfg.FaceService.URL)

	resultCache, cleanup, err := buildCache(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if concurrency <= 0 {
		concurrency = cfg.Analysis.Concurrency
	}

	analyzer := analysis.New(analysis.Config{
		Detector: service,
		Loader:   detect.NewFileImageLoader(),
		Embedder: service,
		Scorer: scoring.NewScorer(
			cfg.Thresholds.Scoring,
			cfg.Thresholds.Eyes,
			cfg.Thresholds.Expression,
			detect.NewSobelFilter(),
		),
		Cache:       resultCache,
		Identity:    cfg.Thresholds.Identity,
		Thresholds:  cfg.Thresholds.Analysis,
		Concurrency: concurrency,
		OnProgress:  onProgress,
	})
	return analyzer, resultCache, cleanup, nil
}

// buildCache creates the result cache, persistent when CACHE_STORE_PATH is set.
func buildCache(cfg *config.Config) (*cache.Cache, func(), error) {
	if cfg.Cache.StorePath == "" {
		return cache.New(cfg.Cache.TTL), func() {}, nil
	}

	store, err := cache.OpenStore(cfg.Cache.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache store: %w", err)
	}

	persistent, err := cache.NewPersistent(cfg.Cache.TTL, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("loading cache store: %w", err)
	}
	return persistent, func() { _ = store.Close() }, nil
}

// loadCluster builds a photo cluster from every decodable image in dir.
// Photo IDs are file names; capture times come from file modification times.
func loadCluster(dir, clusterID string) (analysis.Cluster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return analysis.Cluster{}, fmt.Errorf("reading photo directory: %w", err)
	}

	var photos []detect.Photo
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return analysis.Cluster{}, fmt.Errorf("reading photo info: %w", err)
		}
		photos = append(photos, detect.Photo{
			ID:      entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			TakenAt: info.ModTime(),
		})
	}
	if len(photos) == 0 {
		return analysis.Cluster{}, fmt.Errorf("no photos found in %s", dir)
	}

	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })

	if clusterID == "" {
		clusterID = filepath.Base(dir)
	}
	return analysis.Cluster{ID: clusterID, Photos: photos}, nil
}
