package repository

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riftscope/riftscope/internal/domain/model"
)

func testMatch(id string, creation int64, puuids ...string) model.Match {
	return model.Match{
		Metadata: model.MatchMetadata{MatchID: id, Participants: puuids},
		Info:     model.MatchInfo{GameCreation: creation, GameDuration: 1800},
	}
}

func TestMemStoreUsers(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s := NewMemStore()
		ctx := context.Background()

		Convey("When an unknown user is requested", func() {
			_, err := s.GetUser(ctx, "p-1")

			Convey("Then the lookup fails with not found", func() {
				So(err, ShouldEqual, ErrUserNotFound)
			})
		})

		Convey("When a user is upserted twice", func() {
			So(s.UpsertUser(ctx, model.User{PUUID: "p-1", GameName: "Old"}), ShouldBeNil)
			So(s.UpsertUser(ctx, model.User{PUUID: "p-1", GameName: "New", SummonerLevel: 300}), ShouldBeNil)

			Convey("Then the latest profile wins", func() {
				user, err := s.GetUser(ctx, "p-1")
				So(err, ShouldBeNil)
				So(user.GameName, ShouldEqual, "New")
				So(user.SummonerLevel, ShouldEqual, 300)
			})
		})
	})
}

func TestMemStoreMatches(t *testing.T) {
	Convey("Given a store with three matches for one player", t, func() {
		s := NewMemStore()
		ctx := context.Background()

		So(s.PutMatch(ctx, testMatch("m-2", 200, "p-1", "p-2")), ShouldBeNil)
		So(s.PutMatch(ctx, testMatch("m-1", 100, "p-1")), ShouldBeNil)
		So(s.PutMatch(ctx, testMatch("m-3", 300, "p-1", "p-3")), ShouldBeNil)

		Convey("When recent matches are read", func() {
			matches, err := s.RecentMatches(ctx, "p-1", 10)

			Convey("Then they come back newest first", func() {
				So(err, ShouldBeNil)
				So(len(matches), ShouldEqual, 3)
				So(matches[0].Metadata.MatchID, ShouldEqual, "m-3")
				So(matches[1].Metadata.MatchID, ShouldEqual, "m-2")
				So(matches[2].Metadata.MatchID, ShouldEqual, "m-1")
			})
		})

		Convey("When the read is limited", func() {
			matches, err := s.RecentMatches(ctx, "p-1", 2)

			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)
			So(matches[0].Metadata.MatchID, ShouldEqual, "m-3")
		})

		Convey("When the limit is not positive", func() {
			_, err := s.RecentMatches(ctx, "p-1", 0)
			So(err, ShouldEqual, ErrInvalidLimit)
		})

		Convey("When a match is stored twice", func() {
			So(s.PutMatch(ctx, testMatch("m-2", 200, "p-1", "p-2")), ShouldBeNil)

			Convey("Then the store does not duplicate it", func() {
				So(s.Count(ctx), ShouldEqual, 3)
				matches, _ := s.RecentMatches(ctx, "p-1", 10)
				So(len(matches), ShouldEqual, 3)
			})
		})

		Convey("Then every participant is indexed", func() {
			So(s.HasMatch(ctx, "m-2"), ShouldBeTrue)
			matches, err := s.RecentMatches(ctx, "p-3", 10)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 1)
		})
	})
}

func TestMemStoreRetentionCap(t *testing.T) {
	Convey("Given a store capped at two matches per user", t, func() {
		s := NewMemStore(WithMaxMatchesPerUser(2))
		ctx := context.Background()

		for i := 1; i <= 5; i++ {
			match := testMatch(fmt.Sprintf("m-%d", i), int64(i*100), "p-1")
			So(s.PutMatch(ctx, match), ShouldBeNil)
		}

		Convey("Then only the newest matches remain indexed", func() {
			matches, err := s.RecentMatches(ctx, "p-1", 10)
			So(err, ShouldBeNil)
			So(len(matches), ShouldEqual, 2)
			So(matches[0].Metadata.MatchID, ShouldEqual, "m-5")
			So(matches[1].Metadata.MatchID, ShouldEqual, "m-4")
		})
	})
}
