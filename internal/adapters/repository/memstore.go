package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/pkg/metrics"
)

// Mutex-guarded, in-memory Store implementation.
//
// Matches are stored once and indexed per participant. The per-user index is
// kept sorted by game creation time descending so reads are a slice copy.
type MemStore struct {
	mu         sync.RWMutex
	users      map[string]model.User  // puuid -> user
	matches    map[string]model.Match // matchID -> match
	byUser     map[string][]string    // puuid -> matchIDs, newest first
	maxPerUser int
}

const defaultMaxMatchesPerUser = 200

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		users:      make(map[string]model.User),
		matches:    make(map[string]model.Match),
		byUser:     make(map[string][]string),
		maxPerUser: defaultMaxMatchesPerUser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertUser inserts or refreshes a resolved user keyed by PUUID.
func (s *MemStore) UpsertUser(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.PUUID] = user
	return nil
}

// GetUser returns the stored user for a PUUID.
func (s *MemStore) GetUser(_ context.Context, puuid string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[puuid]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return user, nil
}

// PutMatch stores a completed match and indexes it for every participant.
func (s *MemStore) PutMatch(_ context.Context, match model.Match) error {
	id := match.Metadata.MatchID

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; ok {
		return nil
	}
	s.matches[id] = match

	for _, puuid := range match.Metadata.Participants {
		ids := append(s.byUser[puuid], id)
		sort.SliceStable(ids, func(i, j int) bool {
			return s.matches[ids[i]].Info.GameCreation > s.matches[ids[j]].Info.GameCreation
		})
		if len(ids) > s.maxPerUser {
			ids = ids[:s.maxPerUser]
		}
		s.byUser[puuid] = ids
	}

	metrics.RecordMatchIngested()
	return nil
}

// HasMatch reports whether a match is already stored.
func (s *MemStore) HasMatch(_ context.Context, matchID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.matches[matchID]
	return ok
}

// RecentMatches returns up to limit matches for a PUUID, newest first.
func (s *MemStore) RecentMatches(_ context.Context, puuid string, limit int) ([]model.Match, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[puuid]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]model.Match, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.matches[id])
	}
	return out, nil
}

// Count returns the number of matches tracked in the store.
func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
