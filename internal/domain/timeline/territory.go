package timeline

import "github.com/riftscope/riftscope/internal/domain/model"

// Summoner's Rift map coordinates run 0..~15000 on both axes; the diagonal
// x+y = mapDiagonal splits the two team halves.
const mapDiagonal = 15000

// Blue side team id as reported by the match service.
const blueTeamID = 100

// TerritoryMetrics summarizes where a participant spent a match.
type TerritoryMetrics struct {
	EnemyHalfRatio float64 `json:"enemyHalfRatio"`
	OwnHalfRatio   float64 `json:"ownHalfRatio"`
	SampleFrames   int     `json:"sampleFrames"`
}

// Territory measures the share of timeline frames the participant spent on
// the enemy half of the map. A nil timeline or a participant absent from
// every frame yields zero metrics.
func Territory(tl *model.Timeline, participantID, teamID int) TerritoryMetrics {
	if tl == nil {
		return TerritoryMetrics{}
	}
	var frames, enemyHalf int
	for _, frame := range tl.Info.Frames {
		pf, ok := frame.Frame(participantID)
		if !ok {
			continue
		}
		frames++
		across := pf.Position.X+pf.Position.Y > mapDiagonal
		if teamID != blueTeamID {
			across = !across
		}
		if across {
			enemyHalf++
		}
	}
	if frames == 0 {
		return TerritoryMetrics{}
	}
	ratio := float64(enemyHalf) / float64(frames)
	return TerritoryMetrics{
		EnemyHalfRatio: ratio,
		OwnHalfRatio:   1 - ratio,
		SampleFrames:   frames,
	}
}

// AggregateTerritory reduces per-match metrics to means, weighting each
// match equally. Matches with no sampled frames are skipped.
func AggregateTerritory(results []TerritoryMetrics) TerritoryMetrics {
	var agg TerritoryMetrics
	var n int
	for _, r := range results {
		if r.SampleFrames == 0 {
			continue
		}
		agg.EnemyHalfRatio += r.EnemyHalfRatio
		agg.OwnHalfRatio += r.OwnHalfRatio
		agg.SampleFrames += r.SampleFrames
		n++
	}
	if n == 0 {
		return TerritoryMetrics{}
	}
	agg.EnemyHalfRatio /= float64(n)
	agg.OwnHalfRatio /= float64(n)
	return agg
}
