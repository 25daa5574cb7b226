package progress_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/riftscope/riftscope/internal/domain/progress"
	"github.com/smartystreets/goconvey/convey"
)

func TestClampPercent(t *testing.T) {
	convey.Convey("Given percent inputs", t, func() {
		convey.Convey("Ordinary values round to the nearest integer", func() {
			convey.So(progress.ClampPercent(7.4), convey.ShouldEqual, 7)
			convey.So(progress.ClampPercent(7.5), convey.ShouldEqual, 8)
			convey.So(progress.ClampPercent(0), convey.ShouldEqual, 0)
			convey.So(progress.ClampPercent(100), convey.ShouldEqual, 100)
		})

		convey.Convey("Out-of-range values clamp to the bounds", func() {
			convey.So(progress.ClampPercent(-12), convey.ShouldEqual, 0)
			convey.So(progress.ClampPercent(250), convey.ShouldEqual, 100)
		})

		convey.Convey("Non-finite values coerce to zero", func() {
			convey.So(progress.ClampPercent(math.NaN()), convey.ShouldEqual, 0)
			convey.So(progress.ClampPercent(math.Inf(1)), convey.ShouldEqual, 0)
			convey.So(progress.ClampPercent(math.Inf(-1)), convey.ShouldEqual, 0)
		})
	})
}

func TestEventMarshal(t *testing.T) {
	convey.Convey("Given stream events", t, func() {
		convey.Convey("A progress event renders stage, message and percent", func() {
			ev := progress.NewProgress(progress.StageTrainModel, "Training AI model...", 75)
			raw, err := json.Marshal(ev)
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(raw, &m), convey.ShouldBeNil)
			convey.So(m["type"], convey.ShouldEqual, "progress")
			convey.So(m["stage"], convey.ShouldEqual, "TRAIN_MODEL")
			convey.So(m["percent"], convey.ShouldEqual, 75)
			_, hasPos := m["queuePosition"]
			convey.So(hasPos, convey.ShouldBeFalse)
		})

		convey.Convey("A queued event always carries queuePosition", func() {
			ev := progress.NewProgress(progress.StageQueued, "In queue", 0)
			ev.QueuePosition = 2
			raw, err := json.Marshal(ev)
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(raw, &m), convey.ShouldBeNil)
			convey.So(m["queuePosition"], convey.ShouldEqual, 2)
			convey.So(m["percent"], convey.ShouldEqual, 0)
		})

		convey.Convey("An error event renders only type and message", func() {
			raw, err := json.Marshal(progress.NewError("boom"))
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(raw, &m), convey.ShouldBeNil)
			convey.So(m["type"], convey.ShouldEqual, "error")
			convey.So(m["message"], convey.ShouldEqual, "boom")
			convey.So(len(m), convey.ShouldEqual, 2)
			convey.So(progress.NewError("boom").Terminal(), convey.ShouldBeTrue)
		})

		convey.Convey("A result event wraps its data", func() {
			raw, err := json.Marshal(progress.NewResult(map[string]any{"status": "success"}))
			convey.So(err, convey.ShouldBeNil)

			var m map[string]any
			convey.So(json.Unmarshal(raw, &m), convey.ShouldBeNil)
			convey.So(m["type"], convey.ShouldEqual, "result")
			data, ok := m["data"].(map[string]any)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(data["status"], convey.ShouldEqual, "success")
		})
	})
}
