// Package timeline derives per-minute lane comparisons and positional
// metrics from raw match timelines.
package timeline

import (
	"math"

	"github.com/riftscope/riftscope/internal/domain/model"
)

// Point is one per-minute snapshot of the subject's lead over the lane
// opponent. Readers query it only by Minute.
type Point struct {
	Minute        float64 `json:"minute"`
	LaneGoldDelta float64 `json:"laneGoldDelta"`
	LaneXpDelta   float64 `json:"laneXpDelta"`
}

// Series extracts the lane-lead series between two participants. Frames
// missing either participant are skipped. A nil timeline yields nil.
func Series(tl *model.Timeline, subjectID, opponentID int) []Point {
	if tl == nil || subjectID <= 0 {
		return nil
	}
	points := make([]Point, 0, len(tl.Info.Frames))
	for _, frame := range tl.Info.Frames {
		mine, ok := frame.Frame(subjectID)
		if !ok {
			continue
		}
		theirs, ok := frame.Frame(opponentID)
		if !ok {
			continue
		}
		points = append(points, Point{
			Minute:        frame.Minute(),
			LaneGoldDelta: float64(mine.TotalGold - theirs.TotalGold),
			LaneXpDelta:   float64(mine.XP - theirs.XP),
		})
	}
	return points
}

// ClosestPoint selects the point whose minute is nearest targetMinute.
// Ties break to the first-encountered point, which keeps the choice
// deterministic for a stable input order. Returns false for an empty series.
func ClosestPoint(points []Point, targetMinute float64) (Point, bool) {
	var best Point
	bestDist := math.Inf(1)
	found := false
	for _, p := range points {
		d := math.Abs(p.Minute - targetMinute)
		if d < bestDist {
			best = p
			bestDist = d
			found = true
		}
	}
	return best, found
}
