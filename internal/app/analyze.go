package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/riftscope/riftscope/internal/adapters/riot"
	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/internal/domain/progress"
	"github.com/riftscope/riftscope/internal/domain/sanitize"
	"github.com/riftscope/riftscope/internal/domain/scoring"
	"github.com/riftscope/riftscope/internal/domain/timeline"
	"github.com/riftscope/riftscope/pkg/logger"
	"github.com/riftscope/riftscope/pkg/metrics"
)

// Analyze runs the full pipeline for one subject and streams its events.
// The channel closes after exactly one terminal event, or silently when ctx
// ends first. The caller owns ctx; cancelling it abandons the analysis and
// frees the admission slot.
func (s *Service) Analyze(ctx context.Context, req Request) <-chan progress.Event {
	events := make(chan progress.Event)
	go s.run(ctx, req, events)
	return events
}

// emitter serializes events onto the stream and enforces the percent
// monotonicity guard past the queued phase.
type emitter struct {
	out         chan<- progress.Event
	lastPercent int
	stageStart  time.Time
	lastStage   progress.Stage
}

// send delivers one event unless ctx has ended. Returns false on abandon.
func (e *emitter) send(ctx context.Context, ev progress.Event) bool {
	select {
	case e.out <- ev:
		metrics.RecordStreamEvent(ev.Type)
		return true
	case <-ctx.Done():
		return false
	}
}

// stage emits a decorated progress event for a pipeline stage. Percents never
// go backwards; ties are allowed.
func (s *Service) stage(ctx context.Context, e *emitter, st progress.Stage, message string, percent float64) bool {
	ev := progress.NewProgress(st, message, percent)
	if ev.Percent < e.lastPercent {
		ev.Percent = e.lastPercent
	}
	e.lastPercent = ev.Percent
	ev.Limits = s.gateway.Stats()
	ev.Queue = s.gate.Stats()

	now := time.Now()
	if e.lastStage != "" {
		metrics.RecordStageDuration(string(e.lastStage), float64(now.Sub(e.stageStart).Milliseconds()))
	}
	e.lastStage = st
	e.stageStart = now

	return e.send(ctx, ev)
}

// fail emits the terminal error event.
func (s *Service) fail(ctx context.Context, e *emitter, message string) {
	metrics.RecordAnalysisFailed()
	e.send(ctx, progress.NewError(message))
}

func (s *Service) run(ctx context.Context, req Request, events chan<- progress.Event) {
	defer close(events)

	e := &emitter{out: events}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "analysis panicked", logger.Any("panic", r))
			s.fail(ctx, e, "Server error: internal failure during analysis")
		}
	}()

	// Admission gate: take a free slot directly when one exists. Otherwise
	// register as a waiter first, so the queue position is visible before
	// the first queued event, then block in a separate goroutine while the
	// stream keeps reporting position.
	token := uuid.New()
	release, ok := s.gate.TryAcquire()
	if !ok {
		s.gate.Register(token)
		var acquireErr error
		granted := make(chan struct{})
		go func() {
			release, acquireErr = s.gate.Await(ctx, token)
			close(granted)
		}()

		if !s.waitForSlot(ctx, e, token, granted) {
			// The wait may still win a slot in a race with cancellation;
			// make sure it gets released either way.
			go func() {
				<-granted
				if acquireErr == nil && release != nil {
					release()
				}
			}()
			return
		}
		if acquireErr != nil {
			return // ctx ended while queued; client is gone
		}
	}
	defer release()

	metrics.RecordAnalysisStarted()
	defer func() {
		metrics.RecordAnalysisDuration(time.Since(start).Seconds())
	}()

	if !s.stage(ctx, e, progress.StageFindAccount, "Finding user account...", 5) {
		return
	}

	staticVersion := s.staticVersion(ctx)
	gameName, tagLine := req.splitRiotID()
	routing := riot.RoutingForRegion(req.Region)

	user, err := s.ingestor.GetOrUpdateUser(ctx, gameName, tagLine, req.Region)
	if err != nil {
		if riot.IsNotFound(err) {
			s.fail(ctx, e, "User not found")
		} else {
			s.logger.Error(ctx, "account resolution failed", logger.Error(err))
			s.fail(ctx, e, fmt.Sprintf("Failed to resolve account: %v", err))
		}
		return
	}

	if !s.stage(ctx, e, progress.StageFetchRanked, "Fetching ranked info...", 8) {
		return
	}
	ranked := s.fetchRanked(ctx, req.Region, user.PUUID)

	ok, failed := s.streamIngest(ctx, e, user)
	if failed {
		return
	}
	if !ok {
		return
	}

	if !s.stage(ctx, e, progress.StageLoadMatchData, "Loading match data...", 72) {
		return
	}
	matches, err := s.store.RecentMatches(ctx, user.PUUID, s.trendRows)
	if err != nil {
		s.fail(ctx, e, fmt.Sprintf("Failed to load match data: %v", err))
		return
	}
	rows := scoring.FlattenMatches(matches, user.PUUID)

	if !s.stage(ctx, e, progress.StageTrainModel, "Training AI model...", 75) {
		return
	}
	mdl := scoring.NewModel()
	trainMetrics, err := mdl.Train(rows)
	if err != nil {
		if !errors.Is(err, scoring.ErrInsufficientData) {
			s.fail(ctx, e, fmt.Sprintf("Training failed: %v", err))
			return
		}
		// Too little history for a model: ship a partial result instead of
		// failing the whole analysis.
		partial := sanitize.Value(map[string]any{
			"status":          "partial",
			"message":         "Not enough matches to run the full analysis",
			"user":            user,
			"win_probability": 50.0,
			"total_matches":   len(rows),
			"ranked_data":     ranked,
			"ddragon_version": staticVersion,
		})
		metrics.RecordAnalysisCompleted()
		e.send(ctx, progress.NewResult(partial))
		return
	}

	if !s.stage(ctx, e, progress.StagePerformanceMetrics, "Calculating performance metrics...", 78) {
		return
	}
	averages := scoring.CalculateWeightedAverages(rows)

	leadLimit := len(rows)
	if leadLimit > s.laneLeadLimit || leadLimit == 0 {
		leadLimit = s.laneLeadLimit
	}
	msg := fmt.Sprintf("Computing lane leads @%dm (last %d matches)...", int(s.laneLeadMinute), leadLimit)
	if !s.stage(ctx, e, progress.StageLaneLeads, msg, 79) {
		return
	}
	leadResult := s.leads.Compute(ctx, routing, user.PUUID, matches)
	leadResult.MergeInto(averages)

	if !s.stage(ctx, e, progress.StageMood, "Analyzing player mood...", 80) {
		return
	}
	moods := scoring.AnalyzePlayerMood(rows)
	winRate := scoring.WinRate(rows)

	if !s.stage(ctx, e, progress.StageTerritorial, "Analyzing territorial control...", 83) {
		return
	}
	territory := s.territoryMetrics(ctx, routing, user.PUUID, matches)

	lastRow := rows[0]
	lastStats := lastMatchStats(lastRow)

	if !s.stage(ctx, e, progress.StageWinProb, "Calculating win probability...", 88) {
		return
	}
	modelPrediction := mdl.PredictWinProbability(lastRow.Features)
	// Recent results dominate; the model refines.
	winProbability := winRate*0.7 + modelPrediction*0.3

	if !s.stage(ctx, e, progress.StageOpponentCompare, "Comparing with opponent...", 90) {
		return
	}
	enemyStats, enemyID := s.lastOpponent(matches, user.PUUID)

	if !s.stage(ctx, e, progress.StageWinFactors, "Analyzing win factors...", 92) {
		return
	}
	winDrivers := scoring.WinDriverInsights(rows, lastRow.Features, enemyStats)
	skillFocus := scoring.SkillFocus(rows, lastRow.Features)

	if !s.stage(ctx, e, progress.StageFetchTimeline, "Fetching match timeline...", 95) {
		return
	}
	series := s.lastMatchSeries(ctx, routing, matches, user.PUUID, enemyID, lastStats)

	if !s.stage(ctx, e, progress.StagePrepareResults, "Preparing results...", 98) {
		return
	}

	result := sanitize.Value(map[string]any{
		"status":                "success",
		"user":                  user,
		"metrics":               trainMetrics,
		"win_probability":       winProbability,
		"player_moods":          moods,
		"weighted_averages":     averages,
		"last_match_stats":      lastStats,
		"enemy_stats":           enemyStats,
		"win_drivers":           winDrivers,
		"skill_focus":           skillFocus,
		"match_timeline_series": map[string]any{"timeline": series},
		"performance_trends":    performanceTrends(rows),
		"win_rate":              winRate,
		"total_matches":         len(rows),
		"territory_metrics":     territory,
		"ranked_data":           ranked,
		"ddragon_version":       staticVersion,
	})

	metrics.RecordAnalysisCompleted()
	e.send(ctx, progress.NewResult(result))
}

// waitForSlot streams QUEUED events with the caller's position until the
// admission gate grants a slot. Returns false when ctx ends first.
func (s *Service) waitForSlot(ctx context.Context, e *emitter, token uuid.UUID, granted <-chan struct{}) bool {
	ticker := time.NewTicker(s.queuePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-granted:
			return true
		default:
		}

		// The token is registered before this loop starts, so the first
		// event already carries a real position. Zero means the grant is in
		// flight; skip the emit and wait for it.
		if pos := s.gate.Position(token); pos > 0 {
			stats := s.gate.Stats()
			ev := progress.NewProgress(progress.StageQueued,
				fmt.Sprintf("In queue — position %d of %d", pos, stats.Queued), 0)
			ev.Queue = stats
			ev.QueuePosition = pos
			if !e.send(ctx, ev) {
				return false
			}
		}

		select {
		case <-granted:
			return true
		case <-ticker.C:
		case <-ctx.Done():
			return false
		}
	}
}

// streamIngest pulls match history and relays progress. The bool pair is
// (ok, terminalEmitted): a listing failure emits the terminal error.
func (s *Service) streamIngest(ctx context.Context, e *emitter, user model.User) (bool, bool) {
	steps, err := s.ingestor.IngestMatchHistory(ctx, user, s.matchHistoryCount)
	if err != nil {
		s.fail(ctx, e, fmt.Sprintf("Failed to fetch match history: %v", err))
		return false, true
	}
	for step := range steps {
		percent := 10.0
		if step.Total > 0 {
			percent = 10 + float64(step.Current)/float64(step.Total)*60
		}
		if !s.stage(ctx, e, progress.StageMatchHistory, step.Status, percent) {
			return false, false
		}
	}
	return ctx.Err() == nil, false
}

// fetchRanked returns the solo-queue standing, or nil when unranked. League
// lookups tolerate absence; any other failure degrades to unranked.
func (s *Service) fetchRanked(ctx context.Context, region, puuid string) map[string]any {
	leagueRegion := riot.NormalizeLeagueRegion(region)
	entries, err := s.gateway.LeagueEntries(ctx, leagueRegion, puuid)
	if err != nil {
		s.logger.Warn(ctx, "league lookup failed", logger.Error(err))
		return nil
	}
	for _, entry := range entries {
		if entry.QueueType != model.RankedSolo5x5 {
			continue
		}
		return map[string]any{
			"tier":       entry.Tier,
			"rank":       entry.Rank,
			"lp":         entry.LeaguePoints,
			"wins":       entry.Wins,
			"losses":     entry.Losses,
			"hotStreak":  entry.HotStreak,
			"veteran":    entry.Veteran,
			"freshBlood": entry.FreshBlood,
		}
	}
	return nil
}

// territoryMetrics samples recent timelines for side-of-map presence.
// Absent timelines are skipped; the gateway cache keeps repeats cheap.
func (s *Service) territoryMetrics(ctx context.Context, routing, puuid string, matches []model.Match) timeline.TerritoryMetrics {
	limit := s.territoryMatches
	if len(matches) < limit {
		limit = len(matches)
	}

	results := make([]timeline.TerritoryMetrics, 0, limit)
	for _, match := range matches[:limit] {
		me, ok := match.Info.ParticipantByPUUID(puuid)
		if !ok || me.ParticipantID <= 0 {
			continue
		}
		tl, err := s.gateway.MatchTimeline(ctx, routing, match.Metadata.MatchID)
		if err != nil || tl == nil {
			continue
		}
		results = append(results, timeline.Territory(tl, me.ParticipantID, me.TeamID))
	}
	return timeline.AggregateTerritory(results)
}

// lastOpponent extracts the lane opponent's line from the most recent match.
func (s *Service) lastOpponent(matches []model.Match, puuid string) (map[string]any, int) {
	if len(matches) == 0 {
		return map[string]any{}, 0
	}
	info := matches[0].Info
	me, ok := info.ParticipantByPUUID(puuid)
	if !ok {
		return map[string]any{}, 0
	}
	enemy, ok := info.LaneOpponent(me)
	if !ok {
		return map[string]any{}, 0
	}
	return scoring.OpponentFeatures(info, enemy), enemy.ParticipantID
}

// lastMatchSeries extracts the gold/xp series of the latest match and
// backfills the laning advantage stats when the match payload carried zeros.
// The timeline approximation is the combined gold+xp lead at the minute.
func (s *Service) lastMatchSeries(ctx context.Context, routing string, matches []model.Match, puuid string, enemyID int, lastStats map[string]any) []timeline.Point {
	if len(matches) == 0 {
		return nil
	}
	last := matches[0]
	me, ok := last.Info.ParticipantByPUUID(puuid)
	if !ok || me.ParticipantID <= 0 {
		return nil
	}

	tl, err := s.gateway.MatchTimeline(ctx, routing, last.Metadata.MatchID)
	if err != nil || tl == nil {
		return nil
	}
	series := timeline.Series(tl, me.ParticipantID, enemyID)

	backfills := []struct {
		minute float64
		key    string
	}{
		{8, scoring.FeatEarlyAdvantage},
		{s.laneLeadMinute, scoring.FeatLaningAdvantage},
	}
	for _, b := range backfills {
		if current, ok := lastStats[b.key].(float64); ok && current != 0 {
			continue
		}
		if point, ok := timeline.ClosestPoint(series, b.minute); ok {
			lastStats[b.key] = point.LaneGoldDelta + point.LaneXpDelta
		}
	}
	return series
}

// lastMatchStats flattens the newest row into the result payload shape.
func lastMatchStats(row scoring.Row) map[string]any {
	out := make(map[string]any, len(row.Features)+5)
	for k, v := range row.Features {
		out[k] = v
	}
	out["matchId"] = row.MatchID
	out["championName"] = row.ChampionName
	out["teamPosition"] = row.TeamPosition
	out["win"] = row.Win
	out["gameCreation"] = row.GameCreation
	return out
}

// trendColumns are the per-game series the result exposes for charting.
var trendColumns = []string{
	scoring.FeatKDA, scoring.FeatVisionScore, scoring.FeatKillParticipation,
	scoring.FeatGoldPerMinute, scoring.FeatDamagePerMinute,
	scoring.FeatAggression, scoring.FeatVisionDominance, scoring.FeatJunglePressure,
}

// performanceTrends projects rows onto the trend columns, newest first.
func performanceTrends(rows []scoring.Row) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		point := make(map[string]any, len(trendColumns)+2)
		for _, col := range trendColumns {
			point[col] = r.Features[col]
		}
		point["win"] = r.Win
		point["gameCreation"] = r.GameCreation
		out = append(out, point)
	}
	return out
}
