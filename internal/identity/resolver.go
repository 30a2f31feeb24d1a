package identity

import (
	"context"
	"image"
	"math"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// Resolver assigns each scored face to an existing identity or mints a new
// one. The accumulation is order-dependent: callers MUST feed faces in the
// canonical sequence (photo timestamp ascending, ties broken by photo ID and
// detector emission order) and never concurrently. The resolver is a strict
// fold; each assignment depends on the full identity set built so far.
type Resolver struct {
	embedder   detect.EmbeddingGenerator
	thresholds Thresholds
	identities []*PersonIdentity
}

// NewResolver creates a resolver for one cluster analysis run. The embedder
// may be nil, in which case every face takes the position+size fallback path.
func NewResolver(embedder detect.EmbeddingGenerator, t Thresholds) *Resolver {
	return &Resolver{
		embedder:   embedder,
		thresholds: t,
	}
}

// Identities returns the identities accumulated so far, in creation order.
func (r *Resolver) Identities() []*PersonIdentity {
	return r.identities
}

// Assign resolves one face against the identity set and appends it to the
// chosen (or newly created) identity. The decoded photo image is optional;
// without it the embedding step is skipped and the fallback path is used.
func (r *Resolver) Assign(ctx context.Context, img image.Image, rec scoring.FaceQualityRecord) *PersonIdentity {
	desc := r.requestDescriptor(ctx, img, rec)

	if desc != nil {
		if id := r.matchBySimilarity(desc, rec); id != nil {
			id.append(rec, desc)
			return id
		}
	}

	// No accepted match, or embedding unavailable: degrade to the pure
	// position+size heuristic before giving up and creating a new identity.
	if id := r.fallbackMatch(rec); id != nil {
		id.append(rec, desc)
		return id
	}

	id := newPersonIdentity()
	id.append(rec, desc)
	r.identities = append(r.identities, id)
	return id
}

// requestDescriptor asks the embedding collaborator for a descriptor. Any
// failure is an expected signal gap, not an error to propagate.
func (r *Resolver) requestDescriptor(ctx context.Context, img image.Image, rec scoring.FaceQualityRecord) []float32 {
	if r.embedder == nil || img == nil {
		return nil
	}
	desc, err := r.embedder.Embed(ctx, img, rec.BBox)
	if err != nil {
		return nil
	}
	return desc
}

// matchBySimilarity runs the tiered acceptance over all existing identities:
// the best-scoring identity above the consideration floor is accepted either
// outright (high similarity and confidence, boundary inclusive) or on medium
// similarity backed by at least 2 of 3 secondary checks.
func (r *Resolver) matchBySimilarity(desc []float32, rec scoring.FaceQualityRecord) *PersonIdentity {
	var best *PersonIdentity
	var bestSim, bestConf float64

	for _, id := range r.identities {
		sim, conf := r.scoreIdentity(desc, rec, id)
		if sim <= r.thresholds.MinSimilarity {
			continue
		}
		if sim > bestSim {
			best = id
			bestSim = sim
			bestConf = conf
		}
	}
	if best == nil {
		return nil
	}

	if bestSim >= r.thresholds.HighSimilarity && bestConf >= r.thresholds.MinConfidence {
		return best
	}
	if bestSim >= r.thresholds.MediumSimilarity && r.secondaryChecks(rec, best) >= 2 {
		return best
	}
	return nil
}

// scoreIdentity computes the aggregated similarity and confidence of a face
// against one identity. Per-face similarity blends embedding, pose and
// feature consistency; faces without a stored descriptor renormalize over
// the geometric signals. The identity aggregate favors the mean with a max
// component so one strong match cannot be fully diluted.
func (r *Resolver) scoreIdentity(desc []float32, rec scoring.FaceQualityRecord, id *PersonIdentity) (float64, float64) {
	if len(id.Faces) == 0 {
		return 0, 0
	}

	var sum, maxSim, bestEmbSim float64
	for i, face := range id.Faces {
		poseSim := poseSimilarity(rec, face)
		consistency := r.featureConsistency(rec, face)

		var sim float64
		if other := id.descriptors[i]; other != nil {
			embSim := embeddingSimilarity(r.embedder.Distance(desc, other))
			bestEmbSim = math.Max(bestEmbSim, embSim)
			sim = 0.7*embSim + 0.2*poseSim + 0.1*consistency
		} else {
			sim = (0.2*poseSim + 0.1*consistency) / 0.3
		}

		sum += sim
		maxSim = math.Max(maxSim, sim)
	}

	mean := sum / float64(len(id.Faces))
	similarity := 0.7*mean + 0.3*maxSim

	qualityFactor := rec.Composite
	embConfidence := math.Min(1, math.Max(0, rec.DetScore))
	confidence := 0.5*bestEmbSim + 0.3*qualityFactor + 0.2*embConfidence

	return similarity, confidence
}

// secondaryChecks counts how many of the position/temporal/size checks pass
// against any face already assigned to the identity.
func (r *Resolver) secondaryChecks(rec scoring.FaceQualityRecord, id *PersonIdentity) int {
	// Position check bound: a fraction of the unit-square diagonal.
	maxCenter := r.thresholds.MaxCenterDistance * math.Sqrt2

	var position, temporal, size bool
	for _, face := range id.Faces {
		if !position && centerDistance(rec, face) <= maxCenter {
			position = true
		}
		if !temporal {
			gap := rec.TakenAt.Sub(face.TakenAt)
			if gap < 0 {
				gap = -gap
			}
			if gap <= r.thresholds.MaxTimeGap {
				temporal = true
			}
		}
		if !size {
			if ratio := areaRatio(rec, face); ratio >= r.thresholds.MinSizeRatio && ratio <= r.thresholds.MaxSizeRatio {
				size = true
			}
		}
	}

	passed := 0
	for _, ok := range []bool{position, temporal, size} {
		if ok {
			passed++
		}
	}
	return passed
}

// fallbackMatch is the degraded path when similarity matching is impossible
// or rejected: pick the identity whose closest face sits within the fallback
// position and width windows. Deterministic: the smallest center distance
// wins, ties resolved by identity creation order.
func (r *Resolver) fallbackMatch(rec scoring.FaceQualityRecord) *PersonIdentity {
	var best *PersonIdentity
	bestDist := math.Inf(1)

	for _, id := range r.identities {
		for _, face := range id.Faces {
			dist := centerDistance(rec, face)
			if dist >= r.thresholds.FallbackCenterDistance {
				continue
			}
			if math.Abs(rec.BBox.W-face.BBox.W) >= r.thresholds.FallbackWidthDiff {
				continue
			}
			if dist < bestDist {
				best = id
				bestDist = dist
			}
		}
	}
	return best
}
