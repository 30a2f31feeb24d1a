package identity

import (
	"testing"
	"time"
)

func TestBuildFaceIndex(t *testing.T) {
	takenAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	alice := newPersonIdentity()
	alice.append(baseRecord("p1", takenAt, 0.2), []float32{1, 0, 0})
	alice.append(baseRecord("p2", takenAt, 0.2), []float32{0.95, 0.1, 0})

	bobFirst := baseRecord("p1", takenAt, 0.7)
	bobFirst.FaceIndex = 1
	bobSecond := baseRecord("p2", takenAt, 0.7)
	bobSecond.FaceIndex = 1

	bob := newPersonIdentity()
	bob.append(bobFirst, []float32{0, 1, 0})
	// Face without a descriptor must not be indexed.
	bob.append(bobSecond, nil)

	idx := BuildFaceIndex([]*PersonIdentity{alice, bob})

	if idx.Count() != 3 {
		t.Fatalf("expected 3 indexed faces, got %d", idx.Count())
	}

	neighbors := idx.SimilarFaces([]float32{1, 0, 0}, 2)
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}

	// Both nearest faces belong to the same person as the query descriptor.
	for _, n := range neighbors {
		if n.PersonID != alice.ID {
			t.Errorf("expected neighbor %s to belong to %s, got %s", n.Key, alice.ID, n.PersonID)
		}
	}
	if neighbors[0].Distance > neighbors[1].Distance {
		t.Error("expected neighbors ordered closest first")
	}
}

func TestFaceIndex_EmptyQueries(t *testing.T) {
	idx := NewFaceIndex()

	if got := idx.SimilarFaces([]float32{1, 0, 0}, 3); got != nil {
		t.Errorf("expected nil result from empty index, got %v", got)
	}
	if idx.Count() != 0 {
		t.Errorf("expected empty index, got %d faces", idx.Count())
	}

	idx.Add(baseRecord("p1", time.Time{}, 0.4), "person", []float32{1, 0, 0})
	if got := idx.SimilarFaces(nil, 3); got != nil {
		t.Errorf("expected nil result for empty query, got %v", got)
	}
	if got := idx.SimilarFaces([]float32{1, 0, 0}, 0); got != nil {
		t.Errorf("expected nil result for k=0, got %v", got)
	}
}
