// Package laneleads aggregates lane-opponent gold and xp leads at a target
// minute across a player's recent matches. The challenges-based advantage
// keys from the match payload are unreliable across queues and patches, so
// the timeline is the source of truth here.
package laneleads

import (
	"context"
	"math"
	"sync"

	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/internal/domain/timeline"
	"github.com/riftscope/riftscope/pkg/logger"
	"github.com/riftscope/riftscope/pkg/metrics"
)

// Defaults for the aggregation window.
const (
	DefaultTargetMinute = 14
	DefaultMatchLimit   = 21
)

// Result keys merged into the weighted-averages map. The minute is part of
// the public field names regardless of the configured target.
const (
	KeyGoldLead   = "laneGoldLeadAt14"
	KeyXpLead     = "laneXpLeadAt14"
	KeySampleSize = "laneLeadSampleSize"
)

// TimelineFetcher is the slice of the upstream gateway this package needs.
type TimelineFetcher interface {
	MatchTimeline(ctx context.Context, routing, matchID string) (*model.Timeline, error)
}

// Result is the reduced lane-lead aggregate. SampleSize counts the matches
// that actually contributed a point; the averages are over those matches
// only. Zero survivors yield the zero value.
type Result struct {
	AvgGoldLead float64 `json:"laneGoldLeadAt14"`
	AvgXpLead   float64 `json:"laneXpLeadAt14"`
	SampleSize  int     `json:"laneLeadSampleSize"`
}

// MergeInto copies the aggregate into a weighted-averages style map.
func (r Result) MergeInto(averages map[string]float64) {
	averages[KeyGoldLead] = r.AvgGoldLead
	averages[KeyXpLead] = r.AvgXpLead
	averages[KeySampleSize] = float64(r.SampleSize)
}

// Aggregator fans out timeline fetches for recent matches and reduces the
// nearest-to-target points to mean leads.
type Aggregator struct {
	fetcher      TimelineFetcher
	targetMinute float64
	matchLimit   int
	log          logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithTargetMinute sets the minute the aggregate is taken at.
func WithTargetMinute(minute float64) Option {
	return func(a *Aggregator) {
		if minute > 0 {
			a.targetMinute = minute
		}
	}
}

// WithMatchLimit caps how many recent matches are sampled.
func WithMatchLimit(limit int) Option {
	return func(a *Aggregator) {
		if limit > 0 {
			a.matchLimit = limit
		}
	}
}

// New creates an Aggregator over the given timeline source.
func New(fetcher TimelineFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:      fetcher,
		targetMinute: DefaultTargetMinute,
		matchLimit:   DefaultMatchLimit,
		log:          logger.Named("laneleads"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compute samples up to the configured limit of matches, newest first. Every
// per-match problem (no assigned role, no lane opponent, absent timeline,
// non-finite values) skips that match and never aborts the siblings. The
// fetches run concurrently; the gateway's own limiter bounds them.
func (a *Aggregator) Compute(ctx context.Context, routing, puuid string, matches []model.Match) Result {
	if len(matches) > a.matchLimit {
		matches = matches[:a.matchLimit]
	}

	type sample struct {
		gold, xp float64
		ok       bool
	}
	samples := make([]sample, len(matches))

	var wg sync.WaitGroup
	for i, match := range matches {
		wg.Add(1)
		go func(i int, match model.Match) {
			defer wg.Done()
			gold, xp, ok := a.sampleMatch(ctx, routing, puuid, match)
			samples[i] = sample{gold: gold, xp: xp, ok: ok}
		}(i, match)
	}
	wg.Wait()

	var goldSum, xpSum float64
	count := 0
	for _, s := range samples {
		if !s.ok {
			continue
		}
		goldSum += s.gold
		xpSum += s.xp
		count++
	}

	metrics.RecordLaneLeadSampleSize(count)
	if count == 0 {
		return Result{}
	}
	return Result{
		AvgGoldLead: goldSum / float64(count),
		AvgXpLead:   xpSum / float64(count),
		SampleSize:  count,
	}
}

// sampleMatch extracts one match's lead at the target minute.
func (a *Aggregator) sampleMatch(ctx context.Context, routing, puuid string, match model.Match) (float64, float64, bool) {
	me, ok := match.Info.ParticipantByPUUID(puuid)
	if !ok || me.ParticipantID <= 0 {
		return 0, 0, false
	}
	enemy, ok := match.Info.LaneOpponent(me)
	if !ok || enemy.ParticipantID <= 0 {
		return 0, 0, false
	}

	tl, err := a.fetcher.MatchTimeline(ctx, routing, match.Metadata.MatchID)
	if err != nil {
		a.log.Debug(ctx, "timeline fetch failed",
			logger.String("match_id", match.Metadata.MatchID), logger.Error(err))
		return 0, 0, false
	}
	if tl == nil {
		return 0, 0, false
	}

	points := timeline.Series(tl, me.ParticipantID, enemy.ParticipantID)
	point, ok := timeline.ClosestPoint(points, a.targetMinute)
	if !ok {
		return 0, 0, false
	}
	if !isFinite(point.LaneGoldDelta) || !isFinite(point.LaneXpDelta) {
		return 0, 0, false
	}
	return point.LaneGoldDelta, point.LaneXpDelta, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
