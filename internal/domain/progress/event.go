// Package progress defines the wire protocol of an analysis stream: an
// ordered sequence of progress events terminated by exactly one result or
// error event, one JSON object per line.
package progress

import (
	"encoding/json"
	"math"
)

// Stage identifies a phase of the analysis pipeline.
type Stage string

// Pipeline stages in emission order.
const (
	StageQueued             Stage = "QUEUED"
	StageFindAccount        Stage = "FIND_ACCOUNT"
	StageFetchRanked        Stage = "FETCH_RANKED"
	StageMatchHistory       Stage = "MATCH_HISTORY"
	StageLoadMatchData      Stage = "LOAD_MATCH_DATA"
	StageTrainModel         Stage = "TRAIN_MODEL"
	StagePerformanceMetrics Stage = "PERFORMANCE_METRICS"
	StageLaneLeads          Stage = "LANE_LEADS"
	StageMood               Stage = "MOOD"
	StageTerritorial        Stage = "TERRITORIAL"
	StageWinProb            Stage = "WIN_PROB"
	StageOpponentCompare    Stage = "OPPONENT_COMPARE"
	StageWinFactors         Stage = "WIN_FACTORS"
	StageFetchTimeline      Stage = "FETCH_TIMELINE"
	StagePrepareResults     Stage = "PREPARE_RESULTS"
)

// Event types.
const (
	TypeProgress = "progress"
	TypeError    = "error"
	TypeResult   = "result"
)

// Event is the tagged union streamed to the client. Exactly one of the three
// shapes is rendered depending on Type.
type Event struct {
	Type          string
	Stage         Stage
	Message       string
	Percent       int
	Limits        any
	Queue         any
	QueuePosition int
	Data          any
}

// NewProgress builds a progress event. The percent is clamped to [0,100].
func NewProgress(stage Stage, message string, percent float64) Event {
	return Event{
		Type:    TypeProgress,
		Stage:   stage,
		Message: message,
		Percent: ClampPercent(percent),
	}
}

// NewError builds the terminal error event.
func NewError(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// NewResult builds the terminal result event.
func NewResult(data any) Event {
	return Event{Type: TypeResult, Data: data}
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == TypeError || e.Type == TypeResult
}

// MarshalJSON renders the union shape for the wire. Only the fields relevant
// to the event type appear in the output.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeError:
		return json.Marshal(map[string]any{
			"type":    TypeError,
			"message": e.Message,
		})
	case TypeResult:
		return json.Marshal(map[string]any{
			"type": TypeResult,
			"data": e.Data,
		})
	default:
		m := map[string]any{
			"type":    TypeProgress,
			"stage":   e.Stage,
			"message": e.Message,
			"percent": e.Percent,
		}
		if e.Limits != nil {
			m["limits"] = e.Limits
		}
		if e.Queue != nil {
			m["queue"] = e.Queue
		}
		if e.Stage == StageQueued {
			m["queuePosition"] = e.QueuePosition
		}
		return json.Marshal(m)
	}
}

// ClampPercent coerces a computed percent to the closest integer in [0,100].
// Non-finite inputs coerce to 0.
func ClampPercent(p float64) int {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	n := int(math.Round(p))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
