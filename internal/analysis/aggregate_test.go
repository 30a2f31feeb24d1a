package analysis

import (
	"math"
	"testing"

	"github.com/kozaktomas/burst-composer/internal/identity"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

func identityWithComposites(id string, composites ...float64) *identity.PersonIdentity {
	person := &identity.PersonIdentity{ID: id}
	for i, c := range composites {
		person.Faces = append(person.Faces, scoring.FaceQualityRecord{
			PhotoID:   "p" + string(rune('1'+i)),
			Composite: c,
		})
	}
	return person
}

func TestAggregatePersons(t *testing.T) {
	identities := []*identity.PersonIdentity{
		identityWithComposites("big-gap", 0.3, 0.9),       // potential 0.6
		identityWithComposites("tiny-gap", 0.5, 0.45),     // potential 0.05, dropped
		identityWithComposites("single"),                  // no faces, skipped
		identityWithComposites("one-face", 0.8),           // one face, skipped
		identityWithComposites("mid-gap", 0.7, 0.4, 0.55), // potential 0.3
	}

	persons := AggregatePersons(identities, 0.2)

	if len(persons) != 2 {
		t.Fatalf("expected 2 qualifying persons, got %d", len(persons))
	}

	big, ok := persons["big-gap"]
	if !ok {
		t.Fatal("expected big-gap person to qualify")
	}
	if math.Abs(big.ImprovementPotential-0.6) > 1e-9 {
		t.Errorf("expected potential 0.6, got %.4f", big.ImprovementPotential)
	}
	if big.Best.Composite != 0.9 || big.Worst.Composite != 0.3 {
		t.Errorf("expected best 0.9 / worst 0.3, got %.2f / %.2f",
			big.Best.Composite, big.Worst.Composite)
	}
	// Faces come back sorted best first.
	for i := 1; i < len(big.Faces); i++ {
		if big.Faces[i].Composite > big.Faces[i-1].Composite {
			t.Error("expected faces sorted by composite, best first")
		}
	}

	if _, ok := persons["tiny-gap"]; ok {
		t.Error("expected tiny-gap person to be dropped as noise")
	}
}

func TestOverallImprovement(t *testing.T) {
	if got := OverallImprovement(nil); got != 0 {
		t.Errorf("expected 0 for no persons, got %.4f", got)
	}

	persons := map[string]PersonFaceQualityAnalysis{
		"a": {ImprovementPotential: 0.6},
		"b": {ImprovementPotential: 0.2},
	}
	if got := OverallImprovement(persons); math.Abs(got-0.4) > 1e-9 {
		t.Errorf("expected mean 0.4, got %.4f", got)
	}
}
