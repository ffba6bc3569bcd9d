package service

import (
	"maps"
	"slices"

	"github.com/okian/lapreplay/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReaders sets the number of reading stations.
func WithReaders(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.readers = n
		}
	}
}

// WithTeams sets the team numbers whose pairs are declared up front.
func WithTeams(teams []int) Option {
	return func(s *Service) {
		if len(teams) > 0 {
			s.teams = slices.Clone(teams)
		}
	}
}

// WithTeamNames sets display names by team number.
func WithTeamNames(names map[int]string) Option {
	return func(s *Service) {
		s.names = maps.Clone(names)
	}
}

// WithExcludedTeams leaves teams out of reports.
func WithExcludedTeams(teams []int) Option {
	return func(s *Service) {
		s.excluded = slices.Clone(teams)
	}
}

// WithThreshold sets the debounce window.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 {
			s.threshold = threshold
		}
	}
}

// WithTags seeds the tag table of every replay (tag -> team).
func WithTags(tags map[string]int) Option {
	return func(s *Service) {
		s.tags = maps.Clone(tags)
	}
}

// WithStopOnEnd makes End close the session.
func WithStopOnEnd(stop bool) Option {
	return func(s *Service) {
		s.stopOnEnd = stop
	}
}

// WithStandingsReader selects the reader whose passes count as laps.
func WithStandingsReader(reader int) Option {
	return func(s *Service) {
		if reader >= 0 {
			s.standingsReader = reader
		}
	}
}

// WithMaxLineBytes bounds a single event log line.
func WithMaxLineBytes(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLineBytes = n
		}
	}
}

func defaultTeams() []int {
	teams := make([]int, defaultTeamCount)
	for i := range teams {
		teams[i] = i + 1
	}
	return teams
}

const (
	defaultReaders   = 3
	defaultTeamCount = 18
)
