package analysis

import (
	"context"
	"errors"
	"image"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/identity"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

const defaultConcurrency = 4

// ProgressInfo reports pipeline progress to an optional callback.
type ProgressInfo struct {
	Phase   string // "scoring" or "resolving"
	Current int
	Total   int
	PhotoID string
}

// Config wires the analyzer's collaborators and tuning.
type Config struct {
	Detector detect.FaceDetector
	Loader   detect.ImageLoader
	Embedder detect.EmbeddingGenerator
	Scorer   *scoring.Scorer
	Cache    ResultCache // optional

	Identity   identity.Thresholds
	Thresholds Thresholds

	// Concurrency bounds the parallel scoring phase. Identity resolution is
	// always a single sequential pass regardless of this setting.
	Concurrency int
	OnProgress  func(ProgressInfo)
}

// Analyzer runs the full face quality pipeline for photo clusters.
type Analyzer struct {
	cfg Config
}

// New creates an analyzer. Zero-valued threshold sets fall back to defaults.
func New(cfg Config) *Analyzer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Identity == (identity.Thresholds{}) {
		cfg.Identity = identity.DefaultThresholds()
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Analyzer{cfg: cfg}
}

// photoScan is the scoring-phase result for one photo.
type photoScan struct {
	photo detect.Photo
	img   image.Image
	faces []scoring.FaceQualityRecord
}

// AnalyzeCluster scores all faces, resolves identities, aggregates per-person
// quality and caches the result. A photo whose load or detection fails is
// logged and dropped; the analysis continues over the remainder.
func (a *Analyzer) AnalyzeCluster(ctx context.Context, cluster Cluster) (*ClusterFaceAnalysis, error) {
	if a.cfg.Cache != nil {
		if cached, ok := a.cfg.Cache.Cluster(cluster.ID, len(cluster.Photos)); ok {
			return cached, nil
		}
	}

	scans := a.scorePhotos(ctx, cluster.Photos)

	// Identity resolution is the single ordering-sensitive step: a strict
	// sequential fold over the canonical face sequence.
	resolver := identity.NewResolver(a.cfg.Embedder, a.cfg.Identity)
	images := make(map[string]image.Image, len(scans))
	for _, scan := range scans {
		images[scan.photo.ID] = scan.img
	}

	faces := canonicalOrder(scans)
	for i, face := range faces {
		resolver.Assign(ctx, images[face.PhotoID], face)
		a.reportProgress("resolving", i+1, len(faces), face.PhotoID)
	}

	identities := resolver.Identities()
	persons := AggregatePersons(identities, a.cfg.Thresholds.MinPersonImprovement)

	analysis := &ClusterFaceAnalysis{
		ClusterID:          cluster.ID,
		PhotoCount:         len(cluster.Photos),
		AnalyzedAt:         time.Now(),
		Persons:            persons,
		BasePhotoID:        selectBasePhoto(scans),
		OverallImprovement: OverallImprovement(persons),
		index:              identity.BuildFaceIndex(identities),
	}

	if a.cfg.Cache != nil {
		a.cfg.Cache.SetCluster(analysis)
	}
	return analysis, nil
}

// RankFaces scores each photo's faces and returns them sorted by composite
// score, best first. Per-photo results come from the cache when available.
func (a *Analyzer) RankFaces(ctx context.Context, photos []detect.Photo) (map[string][]scoring.FaceQualityRecord, error) {
	ranked := make(map[string][]scoring.FaceQualityRecord, len(photos))

	for _, photo := range photos {
		if a.cfg.Cache != nil {
			if faces, ok := a.cfg.Cache.PhotoFaces(photo.ID); ok {
				ranked[photo.ID] = sortByComposite(faces)
				continue
			}
		}

		scan, err := a.scorePhoto(ctx, photo)
		if err != nil {
			log.Printf("skipping photo %s: %v", photo.ID, err)
			continue
		}
		ranked[photo.ID] = sortByComposite(scan.faces)
	}

	if len(ranked) == 0 && len(photos) > 0 {
		return nil, errors.New("no photo could be analyzed")
	}
	return ranked, nil
}

// AssessEligibility analyzes the cluster (cached) and applies the terminal
// eligibility decision.
func (a *Analyzer) AssessEligibility(ctx context.Context, cluster Cluster) (*EligibilityResult, error) {
	analysis, err := a.AnalyzeCluster(ctx, cluster)
	if err != nil {
		return nil, err
	}
	result := EvaluateEligibility(analysis, a.cfg.Thresholds)
	return &result, nil
}

// scorePhotos runs the read-only scoring phase across a bounded worker pool,
// one task per photo. Failed photos are dropped from the working set.
func (a *Analyzer) scorePhotos(ctx context.Context, photos []detect.Photo) []photoScan {
	type indexed struct {
		idx  int
		scan photoScan
		err  error
	}

	resultsChan := make(chan indexed, len(photos))
	semaphore := make(chan struct{}, a.cfg.Concurrency)
	var wg sync.WaitGroup

	for i := range photos {
		wg.Add(1)
		go func(idx int, p detect.Photo) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := ctx.Err(); err != nil {
				resultsChan <- indexed{idx: idx, err: err}
				return
			}

			scan, err := a.scorePhoto(ctx, p)
			resultsChan <- indexed{idx: idx, scan: scan, err: err}
		}(i, photos[i])
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results maintaining input order so the fold input is stable.
	ordered := make([]*photoScan, len(photos))
	for r := range resultsChan {
		if r.err != nil {
			log.Printf("dropping photo %s from cluster: %v", photos[r.idx].ID, r.err)
			continue
		}
		scan := r.scan
		ordered[r.idx] = &scan
	}

	scans := make([]photoScan, 0, len(photos))
	done := 0
	for _, s := range ordered {
		done++
		if s != nil {
			scans = append(scans, *s)
			a.reportProgress("scoring", done, len(photos), s.photo.ID)
		}
	}
	return scans
}

// scorePhoto loads, detects and scores one photo.
func (a *Analyzer) scorePhoto(ctx context.Context, photo detect.Photo) (photoScan, error) {
	img, err := a.cfg.Loader.Load(ctx, photo)
	if err != nil {
		return photoScan{}, err
	}

	detected, err := a.cfg.Detector.Detect(ctx, photo, img)
	if err != nil {
		return photoScan{}, err
	}

	faces := make([]scoring.FaceQualityRecord, 0, len(detected))
	for _, face := range detected {
		faces = append(faces, a.cfg.Scorer.Score(photo, face, img))
	}

	if a.cfg.Cache != nil {
		a.cfg.Cache.SetPhotoFaces(photo.ID, faces)
	}
	return photoScan{photo: photo, img: img, faces: faces}, nil
}

// canonicalOrder flattens scans into the mandated processing sequence:
// photo timestamp ascending, ties broken by photo ID, then detector emission
// order. Reordering the input photo list therefore never changes identity
// assignments.
func canonicalOrder(scans []photoScan) []scoring.FaceQualityRecord {
	var faces []scoring.FaceQualityRecord
	for _, scan := range scans {
		faces = append(faces, scan.faces...)
	}
	sort.SliceStable(faces, func(i, j int) bool {
		a, b := faces[i], faces[j]
		if !a.TakenAt.Equal(b.TakenAt) {
			return a.TakenAt.Before(b.TakenAt)
		}
		if a.PhotoID != b.PhotoID {
			return a.PhotoID < b.PhotoID
		}
		return a.FaceIndex < b.FaceIndex
	})
	return faces
}

// selectBasePhoto picks the compositing base: the photo whose faces average
// the highest composite score. Ties resolve to the lexically smaller photo ID.
func selectBasePhoto(scans []photoScan) string {
	var bestID string
	bestScore := -1.0

	for _, scan := range scans {
		if len(scan.faces) == 0 {
			continue
		}
		var sum float64
		for _, f := range scan.faces {
			sum += f.Composite
		}
		mean := sum / float64(len(scan.faces))
		if mean > bestScore || (mean == bestScore && scan.photo.ID < bestID) {
			bestID = scan.photo.ID
			bestScore = mean
		}
	}
	return bestID
}

func sortByComposite(faces []scoring.FaceQualityRecord) []scoring.FaceQualityRecord {
	sorted := append([]scoring.FaceQualityRecord(nil), faces...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Composite > sorted[j].Composite
	})
	return sorted
}

func (a *Analyzer) reportProgress(phase string, current, total int, photoID string) {
	if a.cfg.OnProgress == nil {
		return
	}
	a.cfg.OnProgress(ProgressInfo{
		Phase:   phase,
		Current: current,
		Total:   total,
		PhotoID: photoID,
	})
}
