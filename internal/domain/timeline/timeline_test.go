package timeline_test

import (
	"testing"

	"github.com/riftscope/riftscope/internal/domain/model"
	"github.com/riftscope/riftscope/internal/domain/timeline"
	"github.com/smartystreets/goconvey/convey"
)

func frameAt(minute int64, frames map[string]model.ParticipantFrame) model.TimelineFrame {
	return model.TimelineFrame{
		Timestamp:         minute * 60000,
		ParticipantFrames: frames,
	}
}

func TestSeries(t *testing.T) {
	convey.Convey("Given a timeline with both participants", t, func() {
		tl := &model.Timeline{Info: model.TimelineInfo{Frames: []model.TimelineFrame{
			frameAt(1, map[string]model.ParticipantFrame{
				"1": {TotalGold: 500, XP: 300},
				"6": {TotalGold: 450, XP: 350},
			}),
			frameAt(2, map[string]model.ParticipantFrame{
				"1": {TotalGold: 900, XP: 700},
				// opponent missing from this frame
			}),
			frameAt(3, map[string]model.ParticipantFrame{
				"1": {TotalGold: 1400, XP: 1100},
				"6": {TotalGold: 1200, XP: 1150},
			}),
		}}}

		points := timeline.Series(tl, 1, 6)

		convey.Convey("Then frames missing a participant are skipped", func() {
			convey.So(len(points), convey.ShouldEqual, 2)
			convey.So(points[0].Minute, convey.ShouldEqual, 1.0)
			convey.So(points[0].LaneGoldDelta, convey.ShouldEqual, 50.0)
			convey.So(points[0].LaneXpDelta, convey.ShouldEqual, -50.0)
			convey.So(points[1].LaneGoldDelta, convey.ShouldEqual, 200.0)
		})
	})

	convey.Convey("Given a nil timeline", t, func() {
		convey.So(timeline.Series(nil, 1, 6), convey.ShouldBeNil)
	})
}

func TestClosestPoint(t *testing.T) {
	convey.Convey("Given points at minutes 10, 13 and 16", t, func() {
		points := []timeline.Point{
			{Minute: 10}, {Minute: 13}, {Minute: 16},
		}

		convey.Convey("Then target 14 selects minute 13", func() {
			p, ok := timeline.ClosestPoint(points, 14)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p.Minute, convey.ShouldEqual, 13.0)
		})

		convey.Convey("Then an exact tie keeps the first-encountered point", func() {
			p, ok := timeline.ClosestPoint([]timeline.Point{{Minute: 12}, {Minute: 16}}, 14)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p.Minute, convey.ShouldEqual, 12.0)
		})

		convey.Convey("Then an empty series reports no point", func() {
			_, ok := timeline.ClosestPoint(nil, 14)
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestTerritory(t *testing.T) {
	convey.Convey("Given frames on both halves of the map", t, func() {
		tl := &model.Timeline{Info: model.TimelineInfo{Frames: []model.TimelineFrame{
			frameAt(1, map[string]model.ParticipantFrame{"1": {Position: model.Position{X: 2000, Y: 2000}}}),
			frameAt(2, map[string]model.ParticipantFrame{"1": {Position: model.Position{X: 12000, Y: 12000}}}),
			frameAt(3, map[string]model.ParticipantFrame{"1": {Position: model.Position{X: 13000, Y: 9000}}}),
			frameAt(4, map[string]model.ParticipantFrame{"1": {Position: model.Position{X: 1000, Y: 4000}}}),
		}}}

		convey.Convey("A blue-side participant crosses when x+y exceeds the diagonal", func() {
			m := timeline.Territory(tl, 1, 100)
			convey.So(m.SampleFrames, convey.ShouldEqual, 4)
			convey.So(m.EnemyHalfRatio, convey.ShouldEqual, 0.5)
			convey.So(m.OwnHalfRatio, convey.ShouldEqual, 0.5)
		})

		convey.Convey("A red-side participant inverts the split", func() {
			m := timeline.Territory(tl, 1, 200)
			convey.So(m.EnemyHalfRatio, convey.ShouldEqual, 0.5)
		})

		convey.Convey("A missing participant yields zero metrics", func() {
			m := timeline.Territory(tl, 9, 100)
			convey.So(m.SampleFrames, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given per-match metrics to aggregate", t, func() {
		agg := timeline.AggregateTerritory([]timeline.TerritoryMetrics{
			{EnemyHalfRatio: 0.2, OwnHalfRatio: 0.8, SampleFrames: 10},
			{EnemyHalfRatio: 0.6, OwnHalfRatio: 0.4, SampleFrames: 20},
			{}, // skipped: no frames
		})
		convey.So(agg.EnemyHalfRatio, convey.ShouldAlmostEqual, 0.4)
		convey.So(agg.SampleFrames, convey.ShouldEqual, 30)

		convey.So(timeline.AggregateTerritory(nil).SampleFrames, convey.ShouldEqual, 0)
	})
}
