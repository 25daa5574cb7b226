// Package repository defines the match store interface and the ingestor that
// fills it from the upstream gateway.
package repository

import (
	"context"

	"github.com/riftscope/riftscope/internal/domain/model"
)

// Store provides read/write access to resolved users and their match history.
type Store interface {
	// UpsertUser inserts or refreshes a resolved user keyed by PUUID.
	UpsertUser(ctx context.Context, user model.User) error

	// GetUser returns the stored user for a PUUID.
	// Returns ErrUserNotFound if the user is unknown.
	GetUser(ctx context.Context, puuid string) (model.User, error)

	// PutMatch stores a completed match and indexes it for every
	// participant. Storing the same match twice is a no-op.
	PutMatch(ctx context.Context, match model.Match) error

	// HasMatch reports whether a match is already stored.
	HasMatch(ctx context.Context, matchID string) bool

	// RecentMatches returns up to limit matches for a PUUID ordered by
	// game creation time, newest first.
	// Returns ErrInvalidLimit if limit is not positive.
	RecentMatches(ctx context.Context, puuid string, limit int) ([]model.Match, error)

	// Count returns the number of matches tracked in the store.
	Count(ctx context.Context) int
}
