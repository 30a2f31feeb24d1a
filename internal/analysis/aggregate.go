package analysis

import (
	"sort"

	"github.com/kozaktomas/burst-composer/internal/identity"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// AggregatePersons groups resolved identities into per-person quality
// analyses. Identities with fewer than two faces are skipped (no improvement
// is computable from a single sample), and persons whose best-to-worst gap
// does not clear minImprovement are dropped as noise.
func AggregatePersons(identities []*identity.PersonIdentity, minImprovement float64) map[string]PersonFaceQualityAnalysis {
	persons := make(map[string]PersonFaceQualityAnalysis)

	for _, id := range identities {
		if len(id.Faces) < 2 {
			continue
		}

		faces := append([]scoring.FaceQualityRecord(nil), id.Faces...)
		sort.Slice(faces, func(i, j int) bool {
			return faces[i].Composite > faces[j].Composite
		})

		best := faces[0]
		worst := faces[len(faces)-1]

		potential := best.Composite - worst.Composite
		if potential < 0 {
			potential = 0
		}
		if potential <= minImprovement {
			continue
		}

		persons[id.ID] = PersonFaceQualityAnalysis{
			PersonID:             id.ID,
			Faces:                faces,
			Best:                 best,
			Worst:                worst,
			ImprovementPotential: potential,
		}
	}

	return persons
}

// OverallImprovement is the mean improvement potential across persons, zero
// when no person qualified.
func OverallImprovement(persons map[string]PersonFaceQualityAnalysis) float64 {
	if len(persons) == 0 {
		return 0
	}
	var sum float64
	for _, p := range persons {
		sum += p.ImprovementPotential
	}
	return sum / float64(len(persons))
}
