package sanitize_test

import (
	"math"
	"testing"

	"github.com/riftscope/riftscope/internal/domain/sanitize"
	"github.com/smartystreets/goconvey/convey"
)

func TestValue(t *testing.T) {
	convey.Convey("Given a nested structure with special floats", t, func() {
		in := map[string]any{
			"nan":  math.NaN(),
			"pinf": math.Inf(1),
			"ninf": math.Inf(-1),
			"ok":   3.5,
			"int":  7,
			"str":  "hello",
			"list": []any{math.NaN(), 1.0, "x", []any{math.Inf(1)}},
			"nested": map[string]any{
				"deep": math.Inf(-1),
				"keep": true,
			},
		}

		out, ok := sanitize.Value(in).(map[string]any)
		convey.So(ok, convey.ShouldBeTrue)

		convey.Convey("Then the three special floats become nil", func() {
			convey.So(out["nan"], convey.ShouldBeNil)
			convey.So(out["pinf"], convey.ShouldBeNil)
			convey.So(out["ninf"], convey.ShouldBeNil)
		})

		convey.Convey("Then ordinary values and structure are preserved", func() {
			convey.So(out["ok"], convey.ShouldEqual, 3.5)
			convey.So(out["int"], convey.ShouldEqual, 7)
			convey.So(out["str"], convey.ShouldEqual, "hello")

			list, isList := out["list"].([]any)
			convey.So(isList, convey.ShouldBeTrue)
			convey.So(len(list), convey.ShouldEqual, 4)
			convey.So(list[0], convey.ShouldBeNil)
			convey.So(list[1], convey.ShouldEqual, 1.0)
			convey.So(list[2], convey.ShouldEqual, "x")

			inner, isInner := list[3].([]any)
			convey.So(isInner, convey.ShouldBeTrue)
			convey.So(inner[0], convey.ShouldBeNil)

			nested, isNested := out["nested"].(map[string]any)
			convey.So(isNested, convey.ShouldBeTrue)
			convey.So(nested["deep"], convey.ShouldBeNil)
			convey.So(nested["keep"], convey.ShouldEqual, true)
		})
	})

	convey.Convey("Given scalar inputs", t, func() {
		convey.So(sanitize.Value(math.NaN()), convey.ShouldBeNil)
		convey.So(sanitize.Value(2.0), convey.ShouldEqual, 2.0)
		convey.So(sanitize.Value("s"), convey.ShouldEqual, "s")
		convey.So(sanitize.Value(nil), convey.ShouldBeNil)
		convey.So(sanitize.Value(float32(1.5)), convey.ShouldEqual, float32(1.5))
	})

	convey.Convey("Given a float map", t, func() {
		out, ok := sanitize.Value(map[string]float64{"a": 1, "b": math.NaN()}).(map[string]any)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(out["a"], convey.ShouldEqual, 1.0)
		convey.So(out["b"], convey.ShouldBeNil)
	})
}
