// Package service provides the core analysis service that implements the
// dependencies required by the HTTP API: the admission gate, the analysis
// pipeline, and the queue stats side channel.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riftscope/riftscope/internal/admission"
	"github.com/riftscope/riftscope/internal/adapters/repository"
	"github.com/riftscope/riftscope/internal/adapters/riot"
	"github.com/riftscope/riftscope/internal/domain/laneleads"
	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/pkg/logger"
)

// Gateway is everything the pipeline needs from the upstream client.
type Gateway interface {
	repository.Gateway
	MatchTimeline(ctx context.Context, routing, matchID string) (*model.Timeline, error)
	LeagueEntries(ctx context.Context, platformRegion, puuid string) ([]model.LeagueEntry, error)
	LatestStaticVersion(ctx context.Context) (string, error)
	Stats() riot.Stats
}

// Request identifies the subject of one analysis. RiotID is "name#tag"; the
// API layer rejects malformed ids before the request reaches the service.
type Request struct {
	RiotID string `json:"riotId"`
	Region string `json:"region"`
}

// splitRiotID splits the Riot ID into game name and tag line on the first '#'.
func (r Request) splitRiotID() (string, string) {
	name, tag, _ := strings.Cut(r.RiotID, "#")
	return name, tag
}

// Pipeline defaults.
const (
	defaultMatchHistoryCount = 20
	defaultTrendRows         = 50
	defaultTerritoryMatches  = 5
	defaultQueuePollInterval = 1500 * time.Millisecond
	fallbackStaticVersion    = "14.24.1"
)

// Service owns the admission queue and runs analyses against its gateway,
// store, and scoring collaborators.
type Service struct {
	mu sync.RWMutex

	gate     *admission.Queue
	gateway  Gateway
	store    repository.Store
	ingestor *repository.Ingestor
	leads    *laneleads.Aggregator

	matchHistoryCount int
	trendRows         int
	territoryMatches  int
	queuePollInterval time.Duration
	laneLeadMinute    float64
	laneLeadLimit     int
	pinnedVersion     string

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithGateway sets the upstream gateway. Required.
func WithGateway(gw Gateway) Option {
	return func(s *Service) { s.gateway = gw }
}

// WithStore sets the match store. Defaults to a fresh in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMaxConcurrentAnalyses bounds how many analyses run at once.
func WithMaxConcurrentAnalyses(n int) Option {
	return func(s *Service) { s.gate = admission.New(admission.WithMaxConcurrent(n)) }
}

// WithMatchHistoryCount sets how many recent matches are ingested per run.
func WithMatchHistoryCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.matchHistoryCount = n
		}
	}
}

// WithLaneLeadWindow sets the lane-lead target minute and match cap.
func WithLaneLeadWindow(targetMinute float64, matchLimit int) Option {
	return func(s *Service) {
		if targetMinute > 0 {
			s.laneLeadMinute = targetMinute
		}
		if matchLimit > 0 {
			s.laneLeadLimit = matchLimit
		}
	}
}

// WithQueuePollInterval sets how often queued clients get position updates.
func WithQueuePollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.queuePollInterval = d
		}
	}
}

// WithPinnedStaticVersion pins the static-data version for reproducible
// deployments. "latest" or empty means resolve upstream.
func WithPinnedStaticVersion(v string) Option {
	return func(s *Service) { s.pinnedVersion = strings.TrimSpace(v) }
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New creates the service. A Gateway must be provided via WithGateway before
// Analyze is called; the zero store default keeps tests lightweight.
func New(opts ...Option) *Service {
	s := &Service{
		gate:              admission.New(),
		store:             repository.NewMemStore(),
		matchHistoryCount: defaultMatchHistoryCount,
		trendRows:         defaultTrendRows,
		territoryMatches:  defaultTerritoryMatches,
		queuePollInterval: defaultQueuePollInterval,
		laneLeadMinute:    laneleads.DefaultTargetMinute,
		laneLeadLimit:     laneleads.DefaultMatchLimit,
		logger:            logger.Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gateway != nil {
		s.ingestor = repository.NewIngestor(s.gateway, s.store)
		s.leads = laneleads.New(s.gateway,
			laneleads.WithTargetMinute(s.laneLeadMinute),
			laneleads.WithMatchLimit(s.laneLeadLimit))
	}
	return s
}

// Start marks the service ready. The API layer rejects analyze requests
// while Started reports false.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	s.logger.Info(ctx, "analysis service started")
	return nil
}

// Stop marks the service stopped. In-flight analyses finish on their own
// contexts.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
}

// Started reports lifecycle state.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// QueueStats returns the admission queue snapshot for the side channel.
func (s *Service) QueueStats() admission.Stats {
	return s.gate.Stats()
}

// LimiterStats returns the upstream limiter snapshot.
func (s *Service) LimiterStats() riot.Stats {
	if s.gateway == nil {
		return riot.Stats{}
	}
	return s.gateway.Stats()
}

// staticVersion resolves the static-data version: pinned config wins, then
// the upstream head, then a safe fallback.
func (s *Service) staticVersion(ctx context.Context) string {
	if s.pinnedVersion != "" && !strings.EqualFold(s.pinnedVersion, "latest") {
		return s.pinnedVersion
	}
	v, err := s.gateway.LatestStaticVersion(ctx)
	if err != nil {
		s.logger.Warn(ctx, "static version lookup failed, using fallback",
			logger.String("fallback", fallbackStaticVersion), logger.Error(err))
		return fallbackStaticVersion
	}
	return v
}
