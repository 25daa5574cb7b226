package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeGateway serves canned responses and records what was asked of it.
type fakeGateway struct {
	account     *model.Account
	accountErr  error
	summoner    *model.Summoner
	summonerErr error
	historyIDs  []string
	historyErr  error
	matches     map[string]*model.Match
	matchErrs   map[string]error

	detailCalls []string
}

func (f *fakeGateway) AccountByRiotID(_ context.Context, _, _, _ string) (*model.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeGateway) SummonerByPUUID(_ context.Context, _, _ string) (*model.Summoner, error) {
	return f.summoner, f.summonerErr
}

func (f *fakeGateway) MatchHistoryIDs(_ context.Context, _, _ string, _ int) ([]string, error) {
	return f.historyIDs, f.historyErr
}

func (f *fakeGateway) MatchDetails(_ context.Context, _, matchID string) (*model.Match, error) {
	f.detailCalls = append(f.detailCalls, matchID)
	if err, ok := f.matchErrs[matchID]; ok {
		return nil, err
	}
	return f.matches[matchID], nil
}

func TestGetOrUpdateUser(t *testing.T) {
	Convey("Given a gateway that resolves the subject", t, func() {
		gw := &fakeGateway{
			account:  &model.Account{PUUID: "p-1", GameName: "Faker", TagLine: "KR1"},
			summoner: &model.Summoner{PUUID: "p-1", ProfileIconID: 7, SummonerLevel: 512},
		}
		store := NewMemStore()
		in := NewIngestor(gw, store)

		Convey("When the user is resolved", func() {
			user, err := in.GetOrUpdateUser(context.Background(), "Faker", "KR1", "kr")

			Convey("Then identity and profile are stored", func() {
				So(err, ShouldBeNil)
				So(user.PUUID, ShouldEqual, "p-1")
				So(user.Region, ShouldEqual, "kr")
				So(user.SummonerLevel, ShouldEqual, 512)

				stored, err := store.GetUser(context.Background(), "p-1")
				So(err, ShouldBeNil)
				So(stored.GameName, ShouldEqual, "Faker")
			})
		})

		Convey("When the profile lookup fails", func() {
			gw.summonerErr = errors.New("boom")
			user, err := in.GetOrUpdateUser(context.Background(), "Faker", "KR1", "kr")

			Convey("Then the identity still resolves without profile fields", func() {
				So(err, ShouldBeNil)
				So(user.PUUID, ShouldEqual, "p-1")
				So(user.SummonerLevel, ShouldEqual, 0)
			})
		})

		Convey("When the account lookup fails", func() {
			gw.accountErr = errors.New("no such account")
			_, err := in.GetOrUpdateUser(context.Background(), "Faker", "KR1", "kr")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestIngestMatchHistory(t *testing.T) {
	Convey("Given a gateway with three matches, one already stored and one broken", t, func() {
		gw := &fakeGateway{
			historyIDs: []string{"m-1", "m-2", "m-3"},
			matches: map[string]*model.Match{
				"m-1": {Metadata: model.MatchMetadata{MatchID: "m-1", Participants: []string{"p-1"}}},
				"m-3": {Metadata: model.MatchMetadata{MatchID: "m-3", Participants: []string{"p-1"}}},
			},
			matchErrs: map[string]error{"m-2": errors.New("upstream hiccup")},
		}
		store := NewMemStore()
		So(store.PutMatch(context.Background(), model.Match{
			Metadata: model.MatchMetadata{MatchID: "m-1", Participants: []string{"p-1"}},
		}), ShouldBeNil)

		in := NewIngestor(gw, store)
		user := model.User{PUUID: "p-1", Region: "euw1"}

		Convey("When the history is ingested", func() {
			progress, err := in.IngestMatchHistory(context.Background(), user, 20)
			So(err, ShouldBeNil)

			var steps []IngestProgress
			for step := range progress {
				steps = append(steps, step)
			}

			Convey("Then every id yields one step with a running total", func() {
				So(len(steps), ShouldEqual, 3)
				So(steps[0].Current, ShouldEqual, 1)
				So(steps[2].Current, ShouldEqual, 3)
				So(steps[2].Total, ShouldEqual, 3)
			})

			Convey("Then stored matches are not refetched", func() {
				So(gw.detailCalls, ShouldResemble, []string{"m-2", "m-3"})
			})

			Convey("Then the broken match is skipped, not fatal", func() {
				So(steps[1].Err, ShouldNotBeNil)
				So(store.HasMatch(context.Background(), "m-2"), ShouldBeFalse)
				So(store.HasMatch(context.Background(), "m-3"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a gateway that cannot list history", t, func() {
		gw := &fakeGateway{historyErr: errors.New("listing down")}
		in := NewIngestor(gw, NewMemStore())

		Convey("When the ingest starts", func() {
			_, err := in.IngestMatchHistory(context.Background(), model.User{PUUID: "p-1"}, 20)

			Convey("Then the failure surfaces immediately", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
