package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/riftscope/riftscope/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"RIFTSCOPE_CONFIG",
		"RIFTSCOPE_ADDR",
		"RIFTSCOPE_RIOT_MAX_CONCURRENT",
		"RIFTSCOPE_MAX_CONCURRENT_ANALYSES",
		"RIFTSCOPE_MATCH_HISTORY_COUNT",
		"RIFTSCOPE_CACHE_BACKEND",
		"RIFTSCOPE_QUEUE_POLL_INTERVAL_MS",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.RiotMaxConcurrent, convey.ShouldEqual, 5)
				convey.So(cfg.MaxConcurrentAnalyses, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RIFTSCOPE_ADDR", ":9000")
			_ = os.Setenv("RIFTSCOPE_RIOT_MAX_CONCURRENT", "10")
			_ = os.Setenv("RIFTSCOPE_MAX_CONCURRENT_ANALYSES", "6")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.RiotMaxConcurrent, convey.ShouldEqual, 10)
				convey.So(cfg.MaxConcurrentAnalyses, convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nmatch_history_count: 30\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RIFTSCOPE_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MatchHistoryCount, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When the config is invalid", func() {
			clearConfigEnvVars()
			_ = os.Setenv("RIFTSCOPE_CACHE_BACKEND", "bogus")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
