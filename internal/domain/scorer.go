package domain

// Scoring weights for PickTest.
const (
	FreshAccentBonus     = 10.0
	PreferredAccentBonus = 5.0
	UsagePenalty         = 2.0
	MaxJitter            = 5.0
)

// RandomSource supplies randomness to selection code so that tests can fix
// the sequence.
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// TestSelectionInput collects everything PickTest needs.
type TestSelectionInput struct {
	Candidates      []*CandidateTest
	RecentTestIDs   map[string]struct{}
	RecentAccents   map[string]struct{}
	PreferredAccent string
}

// ScoreTest computes the deterministic part of a candidate's score.
func ScoreTest(t *CandidateTest, recentAccents map[string]struct{}, preferredAccent string) float64 {
	score := 0.0
	if _, heard := recentAccents[t.Accent]; !heard {
		score += FreshAccentBonus
	}
	if preferredAccent != "" && t.Accent == preferredAccent {
		score += PreferredAccentBonus
	}
	score -= UsagePenalty * float64(t.TimesUsed)
	return score
}

// PickTest selects one candidate. Candidates in RecentTestIDs are skipped
// unless every candidate is recent, in which case all are eligible again.
// It returns nil only when there are no candidates.
func PickTest(in TestSelectionInput, rnd RandomSource) *CandidateTest {
	if len(in.Candidates) == 0 {
		return nil
	}

	pool := make([]*CandidateTest, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		if _, recent := in.RecentTestIDs[c.ID]; !recent {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = in.Candidates
	}

	var best *CandidateTest
	bestScore := 0.0
	for _, c := range pool {
		score := ScoreTest(c, in.RecentAccents, in.PreferredAccent) + rnd.Float64()*MaxJitter
		if best == nil || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
