// Package scoring computes recommendation and similarity scores for shoes.
//
// Both scorers are pure functions over caller-supplied records: no I/O, no
// shared state, safe to call from any number of goroutines. Scores are
// deterministic; explanation tag order is made deterministic by sorting
// matched tags lexically before truncation.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/turnoverhq/turnover/internal/domain/model"
)

// Default scoring weights and thresholds.
const (
	defaultCategoryMatchBonus  = 0.2
	defaultTagOverlapWeight    = 0.5
	defaultBrandAffinityBonus  = 0.15
	defaultLightWeightBonus    = 0.1
	defaultMidWeightBonus      = 0.05
	defaultLightWeightMaxGrams = 220.0
	defaultMidWeightMaxGrams   = 250.0

	defaultSimilarityTagWeight     = 0.7
	defaultSimilarityCategoryBonus = 0.3

	maxScore            = 1.0
	maxExplanationTags  = 3
	maxExplanationParts = 2
)

// FallbackExplanation is used when no scoring criterion produced a fragment.
const FallbackExplanation = "A versatile option that could complement your rotation."

// Weights holds every tunable constant of the two scorers so tuning and
// tests can target them directly instead of chasing inline literals.
type Weights struct {
	CategoryMatchBonus  float64 `koanf:"category_match_bonus"`
	TagOverlapWeight    float64 `koanf:"tag_overlap_weight"`
	BrandAffinityBonus  float64 `koanf:"brand_affinity_bonus"`
	LightWeightBonus    float64 `koanf:"light_weight_bonus"`
	MidWeightBonus      float64 `koanf:"mid_weight_bonus"`
	LightWeightMaxGrams float64 `koanf:"light_weight_max_grams"`
	MidWeightMaxGrams   float64 `koanf:"mid_weight_max_grams"`

	SimilarityTagWeight     float64 `koanf:"similarity_tag_weight"`
	SimilarityCategoryBonus float64 `koanf:"similarity_category_bonus"`
}

// DefaultWeights returns the stock weight configuration.
func DefaultWeights() Weights {
	return Weights{
		CategoryMatchBonus:      defaultCategoryMatchBonus,
		TagOverlapWeight:        defaultTagOverlapWeight,
		BrandAffinityBonus:      defaultBrandAffinityBonus,
		LightWeightBonus:        defaultLightWeightBonus,
		MidWeightBonus:          defaultMidWeightBonus,
		LightWeightMaxGrams:     defaultLightWeightMaxGrams,
		MidWeightMaxGrams:       defaultMidWeightMaxGrams,
		SimilarityTagWeight:     defaultSimilarityTagWeight,
		SimilarityCategoryBonus: defaultSimilarityCategoryBonus,
	}
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights replaces the full weight configuration. Non-positive fields
// fall back to their defaults so a partially filled config cannot zero out
// a scoring criterion by accident.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		d := DefaultWeights()
		pick := func(v, def float64) float64 {
			if v > 0 {
				return v
			}
			return def
		}
		e.weights = Weights{
			CategoryMatchBonus:      pick(w.CategoryMatchBonus, d.CategoryMatchBonus),
			TagOverlapWeight:        pick(w.TagOverlapWeight, d.TagOverlapWeight),
			BrandAffinityBonus:      pick(w.BrandAffinityBonus, d.BrandAffinityBonus),
			LightWeightBonus:        pick(w.LightWeightBonus, d.LightWeightBonus),
			MidWeightBonus:          pick(w.MidWeightBonus, d.MidWeightBonus),
			LightWeightMaxGrams:     pick(w.LightWeightMaxGrams, d.LightWeightMaxGrams),
			MidWeightMaxGrams:       pick(w.MidWeightMaxGrams, d.MidWeightMaxGrams),
			SimilarityTagWeight:     pick(w.SimilarityTagWeight, d.SimilarityTagWeight),
			SimilarityCategoryBonus: pick(w.SimilarityCategoryBonus, d.SimilarityCategoryBonus),
		}
	}
}

// Result is a score in [0,1] plus the explanation shown to the user.
type Result struct {
	Score       float64
	Explanation string
}

// Engine evaluates candidates with a fixed weight configuration.
type Engine struct {
	weights Weights
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the engine's active weight configuration.
func (e *Engine) Weights() Weights { return e.weights }

// Recommend scores a candidate shoe against a user's stated category
// preferences and their top-rated retired shoes.
//
// The score is additive: category match, tag overlap with loved shoes,
// brand affinity and a weight bonus, clamped to 1.0 and rounded to two
// decimals (half away from zero). Empty inputs contribute zero rather
// than failing.
func (e *Engine) Recommend(candidate model.Shoe, prefs model.Preferences, topRated []model.Shoe) Result {
	score := 0.0
	var explanations []string

	candidateTags := candidate.TagSet()

	for _, c := range prefs.PreferredCategories {
		if candidate.Category == c {
			score += e.weights.CategoryMatchBonus
			explanations = append(explanations,
				fmt.Sprintf("matches your preferred %s category", candidate.Category))
			break
		}
	}

	if len(topRated) > 0 {
		lovedTags := make(map[string]struct{})
		lovedBrands := make(map[string]struct{})
		for _, loved := range topRated {
			for _, t := range loved.Tags {
				lovedTags[t] = struct{}{}
			}
			lovedBrands[loved.Brand] = struct{}{}
		}

		if len(lovedTags) > 0 {
			matching := intersect(candidateTags, lovedTags)
			score += float64(len(matching)) / float64(len(lovedTags)) * e.weights.TagOverlapWeight
			if len(matching) > 0 {
				explanations = append(explanations,
					fmt.Sprintf("shares %s with your top-rated shoes", joinTags(matching)))
			}
		}

		if _, ok := lovedBrands[candidate.Brand]; ok {
			score += e.weights.BrandAffinityBonus
			explanations = append(explanations,
				fmt.Sprintf("you've loved %s shoes before", candidate.Brand))
		}
	}

	switch {
	case candidate.Weight < e.weights.LightWeightMaxGrams:
		score += e.weights.LightWeightBonus
		explanations = append(explanations, "lightweight design")
	case candidate.Weight < e.weights.MidWeightMaxGrams:
		// Small bonus, not worth calling out in the explanation.
		score += e.weights.MidWeightBonus
	}

	return Result{
		Score:       round2(math.Min(score, maxScore)),
		Explanation: assembleExplanation(explanations),
	}
}

// Similarity scores a candidate shoe against one fixed reference shoe,
// independent of any user: tag Jaccard index weighted at 0.7 plus a flat
// category bonus, clamped to 1.0 and rounded to two decimals.
func (e *Engine) Similarity(reference, candidate model.Shoe) Result {
	refTags := reference.TagSet()
	candTags := candidate.TagSet()

	tagSimilarity := 0.0
	matching := intersect(candTags, refTags)
	if len(refTags) > 0 {
		tagSimilarity = float64(len(matching)) / float64(unionSize(refTags, candTags))
	}

	categoryBonus := 0.0
	if candidate.Category == reference.Category {
		categoryBonus = e.weights.SimilarityCategoryBonus
	}

	score := math.Min(tagSimilarity*e.weights.SimilarityTagWeight+categoryBonus, maxScore)

	explanation := fmt.Sprintf("Similar %s shoe", reference.Category)
	if len(matching) > 0 {
		explanation = fmt.Sprintf("Similar %s characteristics", joinTags(matching))
	}

	return Result{Score: round2(score), Explanation: explanation}
}

// intersect returns the members of a that also appear in b, sorted
// lexically so downstream truncation is deterministic.
func intersect(a, b map[string]struct{}) []string {
	var out []string
	for t := range a {
		if _, ok := b[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func unionSize(a, b map[string]struct{}) int {
	n := len(a)
	for t := range b {
		if _, ok := a[t]; !ok {
			n++
		}
	}
	return n
}

// joinTags renders up to maxExplanationTags tags as "a, b, c".
func joinTags(tags []string) string {
	if len(tags) > maxExplanationTags {
		tags = tags[:maxExplanationTags]
	}
	return strings.Join(tags, ", ")
}

// assembleExplanation joins the first two fragments into a sentence, or
// falls back to the fixed neutral blurb when nothing matched.
func assembleExplanation(explanations []string) string {
	if len(explanations) == 0 {
		return FallbackExplanation
	}
	if len(explanations) > maxExplanationParts {
		explanations = explanations[:maxExplanationParts]
	}
	return "Recommended because " + strings.Join(explanations, ", and ") + "."
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
