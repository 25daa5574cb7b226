package scoring

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riftscope/riftscope/internal/domain/model"
)

// rowFor builds a feature row directly; good games carry clearly better
// numbers than bad ones so correlations have a sign to find.
func rowFor(id string, win bool, kda, gpm float64) Row {
	return Row{
		MatchID: id,
		Win:     win,
		Features: map[string]float64{
			FeatKDA:           kda,
			FeatGoldPerMinute: gpm,
			FeatDeaths:        10 - kda,
			FeatVisionScore:   kda * 8,
		},
	}
}

func trainingRows() []Row {
	var rows []Row
	for i := 0; i < 5; i++ {
		rows = append(rows, rowFor(fmt.Sprintf("w-%d", i), true, 5+float64(i), 450))
		rows = append(rows, rowFor(fmt.Sprintf("l-%d", i), false, 1, 300))
	}
	return rows
}

func TestModelTrain(t *testing.T) {
	Convey("Given a history with clearly separable wins and losses", t, func() {
		m := NewModel()

		Convey("When the model trains", func() {
			metrics, err := m.Train(trainingRows())

			Convey("Then it classifies its own history well", func() {
				So(err, ShouldBeNil)
				So(metrics.SampleSize, ShouldEqual, 10)
				So(metrics.WinRate, ShouldEqual, 50)
				So(metrics.Accuracy, ShouldBeGreaterThan, 80)
				So(len(metrics.TopFeatures), ShouldBeLessThanOrEqualTo, 5)
			})

			Convey("Then a strong game predicts above a weak one", func() {
				strong := map[string]float64{FeatKDA: 8, FeatGoldPerMinute: 460, FeatVisionScore: 60}
				weak := map[string]float64{FeatKDA: 0.5, FeatGoldPerMinute: 290, FeatVisionScore: 5}
				So(m.PredictWinProbability(strong), ShouldBeGreaterThan, m.PredictWinProbability(weak))
			})

			Convey("Then training twice on the same rows is identical", func() {
				again, err := NewModel().Train(trainingRows())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, metrics)
			})
		})
	})

	Convey("Given too few matches", t, func() {
		m := NewModel()

		Convey("When the model trains", func() {
			metrics, err := m.Train(trainingRows()[:3])

			Convey("Then it degrades instead of guessing", func() {
				So(errors.Is(err, ErrInsufficientData), ShouldBeTrue)
				So(metrics.SampleSize, ShouldEqual, 3)
				So(m.PredictWinProbability(map[string]float64{FeatKDA: 9}), ShouldEqual, 50)
			})
		})
	})
}

func TestWeightedAverages(t *testing.T) {
	Convey("Given rows ordered newest first", t, func() {
		rows := []Row{
			{Features: map[string]float64{FeatKDA: 10}},
			{Features: map[string]float64{FeatKDA: 0}},
		}

		Convey("When averages are computed", func() {
			avgs := CalculateWeightedAverages(rows)

			Convey("Then recent games weigh more than old ones", func() {
				So(avgs[FeatKDA], ShouldBeGreaterThan, 5)
				So(avgs[FeatKDA], ShouldBeLessThan, 10)
			})
		})
	})

	Convey("Given no rows", t, func() {
		So(CalculateWeightedAverages(nil), ShouldBeEmpty)
		So(WinRate(nil), ShouldEqual, 50)
	})
}

func TestFlattenMatch(t *testing.T) {
	Convey("Given a match the subject played", t, func() {
		match := model.Match{
			Metadata: model.MatchMetadata{MatchID: "m-1"},
			Info: model.MatchInfo{
				GameCreation: 1000,
				GameDuration: 1800, // 30 minutes
				Participants: []model.Participant{
					{
						PUUID: "p-1", ChampionName: "Ahri", TeamPosition: "MIDDLE", Win: true,
						Kills: 9, Deaths: 3, Assists: 6, GoldEarned: 12000,
						ChampExperience: 15000, TotalDamageDealtToChampions: 24000,
						TotalMinionsKilled: 180, NeutralMinionsKilled: 20,
						Challenges: map[string]float64{"killParticipation": 0.6},
					},
				},
			},
		}

		Convey("When the row is flattened", func() {
			row, ok := FlattenMatch(match, "p-1")

			Convey("Then rates are per minute and challenges pass through", func() {
				So(ok, ShouldBeTrue)
				So(row.ChampionName, ShouldEqual, "Ahri")
				So(row.Features[FeatKDA], ShouldEqual, 5)
				So(row.Features[FeatGoldPerMinute], ShouldEqual, 400)
				So(row.Features[FeatCS], ShouldEqual, 200)
				So(row.Features[FeatKillParticipation], ShouldEqual, 0.6)
			})
		})

		Convey("When the subject is not in the match", func() {
			_, ok := FlattenMatch(match, "p-9")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestAnalyzePlayerMood(t *testing.T) {
	Convey("Given games across the performance range", t, func() {
		rows := []Row{
			{MatchID: "m-1", Win: true, Features: map[string]float64{FeatKDA: 6, FeatDeaths: 1}},
			{MatchID: "m-2", Win: false, Features: map[string]float64{FeatKDA: 0.4, FeatDeaths: 11}},
			{MatchID: "m-3", Win: true, Features: map[string]float64{FeatKDA: 1.2, FeatDeaths: 5}},
		}

		Convey("When moods are derived", func() {
			moods := AnalyzePlayerMood(rows)

			Convey("Then each game gets a label in input order", func() {
				So(len(moods), ShouldEqual, 3)
				So(moods[0].Mood, ShouldEqual, MoodDominant)
				So(moods[1].Mood, ShouldEqual, MoodTilted)
				So(moods[2].Mood, ShouldEqual, MoodSteady)
			})
		})
	})
}

func TestWinDriverInsights(t *testing.T) {
	Convey("Given a latest game with one stat up and one down", t, func() {
		rows := []Row{
			{Features: map[string]float64{FeatKDA: 3, FeatVisionScore: 30}},
			{Features: map[string]float64{FeatKDA: 3, FeatVisionScore: 30}},
		}
		latest := map[string]float64{FeatKDA: 6, FeatVisionScore: 10}

		Convey("When insights are computed", func() {
			insights := WinDriverInsights(rows, latest, map[string]any{FeatKDA: 2.0})

			Convey("Then both moves are reported with direction", func() {
				byFeature := map[string]Insight{}
				for _, ins := range insights {
					byFeature[ins.Feature] = ins
				}
				So(byFeature[FeatKDA].Positive, ShouldBeTrue)
				So(byFeature[FeatKDA].Enemy, ShouldEqual, 2.0)
				So(byFeature[FeatVisionScore].Positive, ShouldBeFalse)
			})
		})

		Convey("When there is no latest game", func() {
			So(WinDriverInsights(rows, nil, nil), ShouldBeNil)
		})
	})
}

func TestSkillFocus(t *testing.T) {
	Convey("Given a latest game weakest in vision", t, func() {
		rows := []Row{
			{Features: map[string]float64{FeatVisionScore: 40, FeatCS: 200, FeatDeaths: 4}},
		}
		latest := map[string]float64{FeatVisionScore: 5, FeatCS: 210, FeatDeaths: 4}

		Convey("When focus areas are ranked", func() {
			focus := SkillFocus(rows, latest)

			Convey("Then vision comes out on top with a suggestion", func() {
				So(len(focus), ShouldEqual, 3)
				So(focus[0].Area, ShouldEqual, "vision")
				So(focus[0].Suggestion, ShouldNotBeEmpty)
			})
		})
	})
}
