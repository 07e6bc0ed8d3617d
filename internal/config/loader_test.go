package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/turnoverhq/turnover/internal/config"
)

// Each scenario lives in its own test function because t.Setenv restores
// variables at test end, not at Convey-block end, so an override set in
// one scenario would leak into its siblings.

func TestLoadDefaults(t *testing.T) {
	convey.Convey("Given no file and no environment overrides", t, func() {
		t.Setenv("TURNOVER_CONFIG", "")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults apply", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "turnover.db")
			convey.So(cfg.AuthMode, convey.ShouldEqual, "jwt")
			convey.So(cfg.TopRatedMinRating, convey.ShouldEqual, 4)
			convey.So(cfg.Scoring.CategoryMatchBonus, convey.ShouldEqual, 0.2)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("TURNOVER_CONFIG", "")
		t.Setenv("TURNOVER_ADDR", ":9999")
		t.Setenv("TURNOVER_DB_PATH", ":memory:")
		t.Setenv("TURNOVER_LOG_LEVEL", "debug")
		t.Setenv("TURNOVER_ALLOW_REPEAT_RETIRE", "true")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then env values win over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9999")
			convey.So(cfg.DBPath, convey.ShouldEqual, ":memory:")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			convey.So(cfg.AllowRepeatRetire, convey.ShouldBeTrue)
		})
	})
}

func TestLoadConfigFile(t *testing.T) {
	convey.Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "turnover.yaml")
		yaml := []byte("addr: \":7777\"\nauth_mode: remote\nauth_url: https://auth.example.com\nscoring:\n  category_match_bonus: 0.25\n")
		convey.So(os.WriteFile(path, yaml, 0o600), convey.ShouldBeNil)
		t.Setenv("TURNOVER_CONFIG", path)

		cfg, err := config.Load(context.Background())

		convey.Convey("Then file values layer over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7777")
			convey.So(cfg.AuthMode, convey.ShouldEqual, "remote")
			convey.So(cfg.Scoring.CategoryMatchBonus, convey.ShouldEqual, 0.25)
		})
	})
}

func TestLoadEnvBeatsFile(t *testing.T) {
	convey.Convey("Given a YAML config file and an env override", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "turnover.yaml")
		yaml := []byte("addr: \":7777\"\nauth_mode: remote\nauth_url: https://auth.example.com\n")
		convey.So(os.WriteFile(path, yaml, 0o600), convey.ShouldBeNil)
		t.Setenv("TURNOVER_CONFIG", path)
		t.Setenv("TURNOVER_ADDR", ":6666")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then the env value beats the file", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":6666")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("TURNOVER_CONFIG", "/does/not/exist.yaml")

		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
	})
}

func TestLoadRejectsUnknownAuthMode(t *testing.T) {
	convey.Convey("Given an unknown auth mode", t, func() {
		t.Setenv("TURNOVER_CONFIG", "")
		t.Setenv("TURNOVER_AUTH_MODE", "saml")

		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestLoadRejectsRemoteWithoutURL(t *testing.T) {
	convey.Convey("Given remote mode without a URL", t, func() {
		t.Setenv("TURNOVER_CONFIG", "")
		t.Setenv("TURNOVER_AUTH_MODE", "remote")

		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestLoadRejectsRatingOutOfRange(t *testing.T) {
	convey.Convey("Given a rating floor outside 1..5", t, func() {
		t.Setenv("TURNOVER_CONFIG", "")
		t.Setenv("TURNOVER_TOP_RATED_MIN_RATING", "9")

		_, err := config.Load(context.Background())
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}
