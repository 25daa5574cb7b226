package config_test

import (
	"testing"

	"github.com/riftscope/riftscope/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.RiotMaxConcurrent, convey.ShouldEqual, 5)
			convey.So(cfg.MaxConcurrentAnalyses, convey.ShouldEqual, 3)
			convey.So(cfg.MatchHistoryCount, convey.ShouldEqual, 20)
			convey.So(cfg.LaneLeadTargetMinute, convey.ShouldEqual, 14)
			convey.So(cfg.LaneLeadMatchLimit, convey.ShouldEqual, 21)
			convey.So(cfg.CacheBackend, convey.ShouldEqual, "memory")
			convey.So(cfg.QueuePollIntervalMS, convey.ShouldEqual, 1500)
		})
	})
}
