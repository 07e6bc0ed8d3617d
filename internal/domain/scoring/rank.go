package scoring

import (
	"sort"

	"github.com/turnoverhq/turnover/internal/domain/model"
)

// Default ranking limits and cutoffs applied by callers of the scorers.
const (
	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 20
	RecommendationCutoff       = 0.1

	DefaultSimilarityLimit = 3
	MaxSimilarityLimit     = 10
	SimilarityCutoff       = 0.2
)

// ClampLimit bounds a caller-supplied limit to [1, max], substituting
// def when the caller passed nothing (zero or negative).
func ClampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Rank drops recommendations at or below cutoff (strict > comparison),
// sorts the survivors by score descending with shoe ID as a deterministic
// tie-break, and truncates to limit.
func Rank(recs []model.Recommendation, cutoff float64, limit int) []model.Recommendation {
	kept := make([]model.Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Score > cutoff {
			kept = append(kept, r)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Shoe.ID < kept[j].Shoe.ID
	})
	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
