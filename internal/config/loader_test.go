package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/lapreplay/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Readers, convey.ShouldEqual, 3)
				convey.So(len(cfg.Teams), convey.ShouldEqual, 18)
				convey.So(cfg.Threshold, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LAPREPLAY_ADDR", ":8080")
			_ = os.Setenv("LAPREPLAY_READERS", "4")
			_ = os.Setenv("LAPREPLAY_TEAMS", "1,2, 3")
			_ = os.Setenv("LAPREPLAY_THRESHOLD", "12.5")
			_ = os.Setenv("LAPREPLAY_STOP_ON_END", "true")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Readers, convey.ShouldEqual, 4)
				convey.So(cfg.Teams, convey.ShouldResemble, []int{1, 2, 3})
				convey.So(cfg.Threshold, convey.ShouldEqual, 12.5)
				convey.So(cfg.StopOnEnd, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
readers: 2
teams: [1, 2, 5]
excluded_teams: [5]
standings_reader: 1
team_names:
  "1": Apolloon
  "2": Ekonomika
nats_url: "nats://nats:4222"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then it should load from the file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Readers, convey.ShouldEqual, 2)
				convey.So(cfg.Teams, convey.ShouldResemble, []int{1, 2, 5})
				convey.So(cfg.ExcludedTeams, convey.ShouldResemble, []int{5})
				convey.So(cfg.StandingsReader, convey.ShouldEqual, 1)
				convey.So(cfg.NATSURL, convey.ShouldEqual, "nats://nats:4222")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				names, nerr := cfg.Names()
				convey.So(nerr, convey.ShouldBeNil)
				convey.So(names[2], convey.ShouldEqual, "Ekonomika")
			})
		})

		convey.Convey("When the YAML file seeds the tag table", func() {
			tmpFile := createTempConfigFile(`
tags:
  "002420140001": 1
  "002420140017": 17
`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then the tags keep their leading zeros", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Tags, convey.ShouldResemble, map[string]int{"002420140001": 1, "002420140017": 17})
			})
		})

		convey.Convey("When the file path comes from LAPREPLAY_CONFIG and env overrides it", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nreaders: 5\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("LAPREPLAY_CONFIG", tmpFile)
			_ = os.Setenv("LAPREPLAY_ADDR", ":7070")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then environment variables win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Readers, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			cfg, err := config.Load(ctx, "/non/existent/file.yaml")

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("LAPREPLAY_ADDR", "")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LAPREPLAY_READERS", "not_a_number")

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"LAPREPLAY_CONFIG",
		"LAPREPLAY_ADDR",
		"LAPREPLAY_READERS",
		"LAPREPLAY_TEAMS",
		"LAPREPLAY_THRESHOLD",
		"LAPREPLAY_STOP_ON_END",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "lapreplay-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
