package repository

import (
	"context"
	"fmt"

	"github.com/riftscope/riftscope/internal/adapters/riot"
	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/pkg/logger"
)

// Gateway is the slice of the upstream client the ingestor needs.
type Gateway interface {
	AccountByRiotID(ctx context.Context, routing, gameName, tagLine string) (*model.Account, error)
	SummonerByPUUID(ctx context.Context, platformRegion, puuid string) (*model.Summoner, error)
	MatchHistoryIDs(ctx context.Context, routing, puuid string, count int) ([]string, error)
	MatchDetails(ctx context.Context, routing, matchID string) (*model.Match, error)
}

// IngestProgress is one step of a match-history ingest. Current counts
// matches handled so far out of Total; Err is set on steps that were skipped
// because the individual match could not be fetched.
type IngestProgress struct {
	Current int
	Total   int
	MatchID string
	Status  string
	Err     error
}

// Ingestor resolves users and pulls their match history into the store.
type Ingestor struct {
	gw    Gateway
	store Store
	log   logger.Logger
}

// NewIngestor wires a gateway to a store.
func NewIngestor(gw Gateway, store Store) *Ingestor {
	return &Ingestor{
		gw:    gw,
		store: store,
		log:   logger.Named("ingest"),
	}
}

// GetOrUpdateUser resolves a Riot ID on a platform region to a stored user,
// refreshing the profile fields on every call.
func (in *Ingestor) GetOrUpdateUser(ctx context.Context, gameName, tagLine, region string) (model.User, error) {
	routing := riot.RoutingForRegion(region)

	account, err := in.gw.AccountByRiotID(ctx, routing, gameName, tagLine)
	if err != nil {
		return model.User{}, fmt.Errorf("resolve account: %w", err)
	}

	user := model.User{
		PUUID:    account.PUUID,
		GameName: account.GameName,
		TagLine:  account.TagLine,
		Region:   region,
	}

	summoner, err := in.gw.SummonerByPUUID(ctx, region, account.PUUID)
	if err != nil {
		// The profile is cosmetic; keep the resolved identity.
		in.log.Warn(ctx, "summoner lookup failed",
			logger.String("puuid", account.PUUID), logger.Error(err))
	} else {
		user.ProfileIconID = summoner.ProfileIconID
		user.SummonerLevel = summoner.SummonerLevel
	}

	if err := in.store.UpsertUser(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("store user: %w", err)
	}
	return user, nil
}

// IngestMatchHistory pulls the user's most recent ranked matches into the
// store, skipping matches already present. It returns a channel that emits
// one IngestProgress per match id and closes when the ingest finishes or ctx
// ends. Failures on individual matches are reported on the step and skipped.
func (in *Ingestor) IngestMatchHistory(ctx context.Context, user model.User, count int) (<-chan IngestProgress, error) {
	routing := riot.RoutingForRegion(user.Region)

	ids, err := in.gw.MatchHistoryIDs(ctx, routing, user.PUUID, count)
	if err != nil {
		return nil, fmt.Errorf("list match history: %w", err)
	}

	progress := make(chan IngestProgress)
	go func() {
		defer close(progress)
		total := len(ids)
		for i, id := range ids {
			step := IngestProgress{
				Current: i + 1,
				Total:   total,
				MatchID: id,
				Status:  fmt.Sprintf("Fetching match %d of %d...", i+1, total),
			}

			if !in.store.HasMatch(ctx, id) {
				match, err := in.gw.MatchDetails(ctx, routing, id)
				switch {
				case err != nil:
					in.log.Warn(ctx, "match fetch failed",
						logger.String("match_id", id), logger.Error(err))
					step.Err = err
				case match != nil:
					if err := in.store.PutMatch(ctx, *match); err != nil {
						step.Err = err
					}
				}
			}

			select {
			case progress <- step:
			case <-ctx.Done():
				return
			}
		}
	}()
	return progress, nil
}
