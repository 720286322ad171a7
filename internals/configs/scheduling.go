package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scheduling holds the windows and schedules the scheduler runs with.
type Scheduling struct {
	// Timezone is the IANA zone that "today" is computed in.
	Timezone string `yaml:"timezone"`

	// HorizonDays is how far ahead recurring classes are materialized.
	HorizonDays int `yaml:"horizon_days"`

	// ConflictHorizonDays bounds the check of an open-ended recurring candidate.
	ConflictHorizonDays int `yaml:"conflict_horizon_days"`

	// MaxWindowDays is the longest calendar or materialize range accepted.
	MaxWindowDays int `yaml:"max_window_days"`

	CalendarCacheTTL time.Duration `yaml:"calendar_cache_ttl"`

	// CalendarFeedDays is the default span of the .ics feed.
	CalendarFeedDays int `yaml:"calendar_feed_days"`

	// HorizonCron is a cron expression (5 fields) for the nightly horizon run.
	HorizonCron string `yaml:"horizon_cron"`

	RunSeeds  bool   `yaml:"run_seeds"`
	SeedsFile string `yaml:"seeds_file"`
}

const (
	defaultTimezone      = "Asia/Jakarta"
	defaultHorizonDays   = 90
	defaultConflictDays  = 365
	defaultMaxWindowDays = 366
	defaultCacheTTL      = 5 * time.Minute
	defaultFeedDays      = 60
	defaultHorizonCron   = "0 2 * * *"
	defaultSeedsFile     = "internals/seeds/resources.json"
)

func DefaultScheduling() *Scheduling {
	return &Scheduling{
		Timezone:            defaultTimezone,
		HorizonDays:         defaultHorizonDays,
		ConflictHorizonDays: defaultConflictDays,
		MaxWindowDays:       defaultMaxWindowDays,
		CalendarCacheTTL:    defaultCacheTTL,
		CalendarFeedDays:    defaultFeedDays,
		HorizonCron:         defaultHorizonCron,
		SeedsFile:           defaultSeedsFile,
	}
}

// Normalize fills zero values so a partial file still works.
func (s *Scheduling) Normalize() {
	if s.Timezone == "" {
		s.Timezone = defaultTimezone
	}
	if s.HorizonDays <= 0 {
		s.HorizonDays = defaultHorizonDays
	}
	if s.ConflictHorizonDays <= 0 {
		s.ConflictHorizonDays = defaultConflictDays
	}
	if s.MaxWindowDays <= 0 {
		s.MaxWindowDays = defaultMaxWindowDays
	}
	if s.CalendarCacheTTL <= 0 {
		s.CalendarCacheTTL = defaultCacheTTL
	}
	if s.CalendarFeedDays <= 0 {
		s.CalendarFeedDays = defaultFeedDays
	}
	if s.CalendarFeedDays > s.MaxWindowDays {
		s.CalendarFeedDays = s.MaxWindowDays
	}
	if s.HorizonCron == "" {
		s.HorizonCron = defaultHorizonCron
	}
	if s.SeedsFile == "" {
		s.SeedsFile = defaultSeedsFile
	}
}

// Location resolves Timezone.
func (s *Scheduling) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// LoadScheduling reads path (missing file means defaults), then applies
// SCHEDULING_TIMEZONE, SCHEDULING_HORIZON_DAYS and RUN_SEEDS.
func LoadScheduling(path string) (*Scheduling, error) {
	cfg := DefaultScheduling()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Printf("[INFO] %s tidak ada, pakai default scheduling", path)
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if v := GetEnv("SCHEDULING_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if n := GetEnvInt("SCHEDULING_HORIZON_DAYS", 0); n > 0 {
		cfg.HorizonDays = n
	}
	if GetEnv("RUN_SEEDS") == "true" {
		cfg.RunSeeds = true
	}
	cfg.Normalize()

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}
