package scoring

import (
	"errors"
	"math"
	"sort"
)

// ErrInsufficientData marks a training set too small to produce a model.
// Callers downgrade to a partial result instead of failing the analysis.
var ErrInsufficientData = errors.New("not enough matches to train on")

// minTrainRows is the smallest history that yields a usable model.
const minTrainRows = 5

// FeatureWeight is one trained feature with its learned influence on winning.
type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// Metrics summarizes a training run.
type Metrics struct {
	Accuracy    float64         `json:"accuracy"`
	SampleSize  int             `json:"sample_size"`
	WinRate     float64         `json:"win_rate"`
	TopFeatures []FeatureWeight `json:"top_features"`
}

// Model scores matches with per-feature weights learned from the subject's
// own history. It is deterministic: the same rows always yield the same
// weights. Not safe for concurrent Train calls; the pipeline trains once per
// analysis.
type Model struct {
	weights map[string]float64
	means   map[string]float64
	stddevs map[string]float64
	trained bool
}

// NewModel returns an untrained model.
func NewModel() *Model {
	return &Model{}
}

// Train fits per-feature weights from win/loss correlation across rows.
// Returns ErrInsufficientData when the history is too short; the model stays
// untrained and predictions fall back to a coin flip.
func (m *Model) Train(rows []Row) (Metrics, error) {
	if len(rows) < minTrainRows {
		return Metrics{SampleSize: len(rows)}, ErrInsufficientData
	}

	wins := 0
	for _, r := range rows {
		if r.Win {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(rows))

	m.means = make(map[string]float64, len(trainFeatures))
	m.stddevs = make(map[string]float64, len(trainFeatures))
	m.weights = make(map[string]float64, len(trainFeatures))

	for _, feat := range trainFeatures {
		mean, stddev := meanStddev(rows, feat)
		m.means[feat] = mean
		m.stddevs[feat] = stddev
		m.weights[feat] = pointBiserial(rows, feat, mean, stddev, winRate)
	}
	m.trained = true

	correct := 0
	for _, r := range rows {
		predictedWin := m.score(r.Features) > 0
		if predictedWin == r.Win {
			correct++
		}
	}

	return Metrics{
		Accuracy:    float64(correct) / float64(len(rows)) * 100,
		SampleSize:  len(rows),
		WinRate:     winRate * 100,
		TopFeatures: m.topFeatures(5),
	}, nil
}

// PredictWinProbability scores one feature row into a 0..100 probability.
// An untrained model returns 50.
func (m *Model) PredictWinProbability(features map[string]float64) float64 {
	if !m.trained {
		return 50
	}
	// Logistic squash of the standardized weighted sum.
	return 100 / (1 + math.Exp(-m.score(features)))
}

// score is the standardized weighted sum; positive leans toward a win.
func (m *Model) score(features map[string]float64) float64 {
	var s float64
	for feat, w := range m.weights {
		stddev := m.stddevs[feat]
		if stddev == 0 {
			continue
		}
		s += w * (features[feat] - m.means[feat]) / stddev
	}
	return s
}

// topFeatures returns the n strongest weights by magnitude, ties broken by
// name so output is stable.
func (m *Model) topFeatures(n int) []FeatureWeight {
	out := make([]FeatureWeight, 0, len(m.weights))
	for feat, w := range m.weights {
		out = append(out, FeatureWeight{Feature: feat, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Weight), math.Abs(out[j].Weight)
		if ai != aj {
			return ai > aj
		}
		return out[i].Feature < out[j].Feature
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CalculateWeightedAverages computes recency-weighted feature means over
// rows ordered newest first. Each game counts recencyDecay times the one
// after it.
func CalculateWeightedAverages(rows []Row) map[string]float64 {
	const recencyDecay = 0.9

	out := make(map[string]float64)
	if len(rows) == 0 {
		return out
	}

	sums := make(map[string]float64)
	var totalWeight float64
	weight := 1.0
	for _, r := range rows {
		for feat, v := range r.Features {
			sums[feat] += v * weight
		}
		totalWeight += weight
		weight *= recencyDecay
	}
	for feat, sum := range sums {
		out[feat] = sum / totalWeight
	}
	return out
}

// WinRate is the plain win percentage over rows, 50 when empty.
func WinRate(rows []Row) float64 {
	if len(rows) == 0 {
		return 50
	}
	wins := 0
	for _, r := range rows {
		if r.Win {
			wins++
		}
	}
	return float64(wins) / float64(len(rows)) * 100
}

// meanStddev computes the population mean and standard deviation of a
// feature across rows.
func meanStddev(rows []Row, feat string) (float64, float64) {
	var sum float64
	for _, r := range rows {
		sum += r.Features[feat]
	}
	mean := sum / float64(len(rows))

	var variance float64
	for _, r := range rows {
		d := r.Features[feat] - mean
		variance += d * d
	}
	variance /= float64(len(rows))
	return mean, math.Sqrt(variance)
}

// pointBiserial correlates a feature with the win flag. Zero-variance
// features get weight 0.
func pointBiserial(rows []Row, feat string, mean, stddev, winRate float64) float64 {
	if stddev == 0 || winRate == 0 || winRate == 1 {
		return 0
	}

	var winSum, lossSum float64
	var winN, lossN int
	for _, r := range rows {
		if r.Win {
			winSum += r.Features[feat]
			winN++
		} else {
			lossSum += r.Features[feat]
			lossN++
		}
	}
	winMean := winSum / float64(winN)
	lossMean := lossSum / float64(lossN)

	return (winMean - lossMean) / stddev * math.Sqrt(winRate*(1-winRate))
}
