// Package config defines lapreplay configuration and its loading.
//
// Conventions:
// - Defaults come from New; Load layers a YAML file and env vars on top.
// - Validation errors wrap ErrInvalidConfig, loading errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the serve command.
	Addr string `koanf:"addr"`

	// Readers is the number of reading stations; reader ids are 0..Readers-1.
	Readers int `koanf:"readers"`

	// Teams lists the team numbers to track. Every reader x team pair is
	// declared up front so pairs without passes still report empty series.
	Teams []int `koanf:"teams"`

	// ExcludedTeams are reconstructed but left out of reports and exports.
	ExcludedTeams []int `koanf:"excluded_teams"`

	// TeamNames maps team numbers to display names used in export file names.
	TeamNames map[string]string `koanf:"team_names"`

	// Tags seeds the tag table (tag -> team) for logs without AddTag events.
	// Quote the tags in YAML so leading zeros survive.
	Tags map[string]int `koanf:"tags"`

	// Threshold is the debounce window in log time units.
	Threshold float64 `koanf:"threshold"`

	// StopOnEnd makes an End event close the session again.
	StopOnEnd bool `koanf:"stop_on_end"`

	// StandingsReader is the reader whose passes count as laps.
	StandingsReader int `koanf:"standings_reader"`

	// MaxLineBytes bounds a single log line.
	MaxLineBytes int `koanf:"max_line_bytes"`

	// NATSURL is the JetStream server used by the import command.
	NATSURL string `koanf:"nats_url"`

	// S3 export destination; exports go to a local directory when S3Bucket is empty.
	S3Bucket   string `koanf:"s3_bucket"`
	S3Prefix   string `koanf:"s3_prefix"`
	S3Region   string `koanf:"s3_region"`
	S3Endpoint string `koanf:"s3_endpoint"`

	// MetricsFile, when set, receives a Prometheus textfile dump after batch commands.
	MetricsFile string `koanf:"metrics_file"`
}

const (
	defaultReaders      = 3
	defaultTeamCount    = 18
	defaultThreshold    = 30
	defaultMaxLineBytes = 1 << 20
)

// New creates a Config with defaults.
func New() *Config {
	teams := make([]int, defaultTeamCount)
	for i := range teams {
		teams[i] = i + 1
	}
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		Readers:         defaultReaders,
		Teams:           teams,
		TeamNames:       map[string]string{},
		Tags:            map[string]int{},
		Threshold:       defaultThreshold,
		StandingsReader: 0,
		MaxLineBytes:    defaultMaxLineBytes,
		NATSURL:         "nats://127.0.0.1:4222",
		S3Region:        "us-east-1",
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Readers < 1:
		return fmt.Errorf("%w: readers must be at least 1", ErrInvalidConfig)
	case len(c.Teams) == 0:
		return fmt.Errorf("%w: teams must not be empty", ErrInvalidConfig)
	case c.Threshold < 0:
		return fmt.Errorf("%w: threshold must not be negative", ErrInvalidConfig)
	case c.StandingsReader < 0 || c.StandingsReader >= c.Readers:
		return fmt.Errorf("%w: standings_reader %d out of range [0,%d)", ErrInvalidConfig, c.StandingsReader, c.Readers)
	case c.MaxLineBytes < 1:
		return fmt.Errorf("%w: max_line_bytes must be positive", ErrInvalidConfig)
	}
	seen := make(map[int]struct{}, len(c.Teams))
	for _, t := range c.Teams {
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: team %d listed twice", ErrInvalidConfig, t)
		}
		seen[t] = struct{}{}
	}
	for tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: tags must not contain an empty tag", ErrInvalidConfig)
		}
	}
	if _, err := c.Names(); err != nil {
		return err
	}
	return nil
}

// Names converts TeamNames to team-number keys.
func (c *Config) Names() (map[int]string, error) {
	names := make(map[int]string, len(c.TeamNames))
	for k, v := range c.TeamNames {
		team, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("%w: team_names key %q is not a team number", ErrInvalidConfig, k)
		}
		names[team] = v
	}
	return names, nil
}
