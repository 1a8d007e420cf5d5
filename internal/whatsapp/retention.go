package whatsapp

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/config"
)

// RetentionSweeper deletes captured media past the retention window on
// a cron schedule. A retention of zero days disables the sweep.
type RetentionSweeper struct {
	dir      string
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
	logger   zerolog.Logger
}

// NewRetentionSweeper creates a sweeper for the capture directory
func NewRetentionSweeper(cfg config.CaptureConfig, logger zerolog.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		dir:      cfg.Dir,
		maxAge:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		schedule: cfg.SweepSchedule,
		cron:     cron.New(),
		logger:   logger.With().Str("module", "retention").Logger(),
	}
}

// Start schedules the sweep
func (s *RetentionSweeper) Start() error {
	if s.maxAge <= 0 {
		s.logger.Info().Msg("Retention disabled, captured media is kept forever")
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.schedule).
		Dur("max_age", s.maxAge).
		Msg("Retention sweep scheduled")

	return nil
}

// Stop stops the schedule
func (s *RetentionSweeper) Stop() {
	s.cron.Stop()
}

// sweep removes captured files older than the retention window
func (s *RetentionSweeper) sweep() {
	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Capture dir may not exist until the first voice note
			return nil
		}
		if info.IsDir() || info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove expired capture")
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retention sweep failed")
		return
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Expired captures removed")
	}
}
