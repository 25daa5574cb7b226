package scoring

import (
	"fmt"
	"math"
	"sort"
)

// Insight compares one feature of the latest game against the subject's
// recent baseline and, when available, the lane opponent.
type Insight struct {
	Feature  string  `json:"feature"`
	Latest   float64 `json:"latest"`
	Baseline float64 `json:"baseline"`
	Enemy    float64 `json:"enemy,omitempty"`
	Delta    float64 `json:"delta"`
	Positive bool    `json:"positive"`
	Message  string  `json:"message"`
}

// Focus is one improvement area ranked by how far it trails the baseline.
type Focus struct {
	Area       string  `json:"area"`
	Score      float64 `json:"score"`
	Suggestion string  `json:"suggestion"`
}

// driverFeatures are the stats worth calling out to the player, with a
// human-readable name each.
var driverFeatures = []struct {
	key  string
	name string
}{
	{FeatKDA, "KDA"},
	{FeatGoldPerMinute, "gold per minute"},
	{FeatDamagePerMinute, "damage per minute"},
	{FeatVisionScore, "vision score"},
	{FeatKillParticipation, "kill participation"},
	{FeatCS, "creep score"},
	{FeatLaningAdvantage, "laning phase lead"},
}

// WinDriverInsights ranks how the latest game's key stats moved against the
// recency-weighted baseline. Returns the most significant movers first.
func WinDriverInsights(rows []Row, latest map[string]float64, enemy map[string]any) []Insight {
	if len(latest) == 0 {
		return nil
	}
	baseline := CalculateWeightedAverages(rows)

	out := make([]Insight, 0, len(driverFeatures))
	for _, f := range driverFeatures {
		base := baseline[f.key]
		val := latest[f.key]
		delta := val - base

		ins := Insight{
			Feature:  f.key,
			Latest:   val,
			Baseline: base,
			Delta:    delta,
			Positive: delta >= 0,
		}
		if ev, ok := enemy[f.key].(float64); ok {
			ins.Enemy = ev
		}
		if delta >= 0 {
			ins.Message = fmt.Sprintf("Your %s was above your recent average (%.1f vs %.1f)", f.name, val, base)
		} else {
			ins.Message = fmt.Sprintf("Your %s dipped below your recent average (%.1f vs %.1f)", f.name, val, base)
		}
		out = append(out, ins)
	}

	sort.Slice(out, func(i, j int) bool {
		di := relativeDelta(out[i].Delta, out[i].Baseline)
		dj := relativeDelta(out[j].Delta, out[j].Baseline)
		if di != dj {
			return di > dj
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// focusAreas maps a coarse skill area to the feature that measures it.
var focusAreas = []struct {
	area       string
	key        string
	suggestion string
}{
	{"vision", FeatVisionScore, "Place and clear more wards, especially around objectives"},
	{"farming", FeatCS, "Work on consistent CS through the mid game"},
	{"laning", FeatLaningAdvantage, "Trade more deliberately before 14 minutes"},
	{"aggression", FeatAggression, "Look for more pick opportunities when ahead"},
	{"survival", FeatDeaths, "Play further back until key items are online"},
}

// SkillFocus returns the areas where the latest game trails the baseline
// hardest, worst first. Deaths count inverted: more deaths is worse.
func SkillFocus(rows []Row, latest map[string]float64) []Focus {
	if len(latest) == 0 {
		return nil
	}
	baseline := CalculateWeightedAverages(rows)

	out := make([]Focus, 0, len(focusAreas))
	for _, f := range focusAreas {
		gap := latest[f.key] - baseline[f.key]
		if f.key == FeatDeaths {
			gap = -gap
		}
		score := relativeDelta(gap, baseline[f.key])
		out = append(out, Focus{
			Area:       f.area,
			Score:      score,
			Suggestion: f.suggestion,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Area < out[j].Area
	})

	// Only the trailing areas are worth surfacing.
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// relativeDelta scales a delta by its baseline so large-valued features do
// not drown out small ones.
func relativeDelta(delta, baseline float64) float64 {
	denom := math.Abs(baseline)
	if denom < 1 {
		denom = 1
	}
	return delta / denom
}
