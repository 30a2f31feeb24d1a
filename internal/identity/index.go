package identity

import (
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// HNSW parameters for 512-dim face descriptors.
const (
	// hnswMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	hnswMaxNeighbors = 16
)

// Neighbor is one similar-face result from the index.
type Neighbor struct {
	Key      string
	Distance float64
	Face     scoring.FaceQualityRecord
	PersonID string
}

// FaceIndex is a cluster-scoped nearest-neighbour index over the face
// descriptors gathered during identity resolution. It lets the downstream
// compositor shortlist donor faces without re-running the embedder. Built
// once after the resolution fold; safe for concurrent reads afterwards.
type FaceIndex struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[string]
	faces   map[string]scoring.FaceQualityRecord
	persons map[string]string
}

// NewFaceIndex creates an empty index.
func NewFaceIndex() *FaceIndex {
	return &FaceIndex{
		faces:   make(map[string]scoring.FaceQualityRecord),
		persons: make(map[string]string),
	}
}

// BuildFaceIndex indexes every face with a descriptor across the resolved
// identities. Faces whose embedding was unavailable are simply not indexed.
func BuildFaceIndex(identities []*PersonIdentity) *FaceIndex {
	idx := NewFaceIndex()
	for _, id := range identities {
		for i, face := range id.Faces {
			if desc := id.Descriptor(i); desc != nil {
				idx.Add(face, id.ID, desc)
			}
		}
	}
	return idx
}

// Add inserts one face descriptor into the index.
func (x *FaceIndex) Add(face scoring.FaceQualityRecord, personID string, desc []float32) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.graph == nil {
		g := hnsw.NewGraph[string]()
		g.M = hnswMaxNeighbors
		g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
		g.Distance = hnsw.CosineDistance
		x.graph = g
	}

	key := face.Key()
	x.graph.Add(hnsw.MakeNode(key, desc))
	x.faces[key] = face
	x.persons[key] = personID
}

// SimilarFaces returns up to k faces nearest to the query descriptor,
// closest first.
func (x *FaceIndex) SimilarFaces(query []float32, k int) []Neighbor {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.graph == nil || len(query) == 0 || k <= 0 {
		return nil
	}

	nodes := x.graph.Search(query, k)
	neighbors := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		face, ok := x.faces[n.Key]
		if !ok {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			Key:      n.Key,
			Distance: detect.CosineDistance(query, n.Value),
			Face:     face,
			PersonID: x.persons[n.Key],
		})
	}
	return neighbors
}

// Count returns the number of indexed faces.
func (x *FaceIndex) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.faces)
}
