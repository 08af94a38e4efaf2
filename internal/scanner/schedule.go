package scanner

import (
	"context"
	"errors"
	"time"
)

// RunEvery collects once, then again on every tick of interval until ctx is
// cancelled. A store failure stops the loop and is returned; cancellation
// returns nil.
func (s *Scanner) RunEvery(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}

	if _, _, err := s.Collect(ctx); err != nil {
		return err
	}
	s.log.Infof("Initial inventory recorded; collecting every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Scheduled collection stopped")
			return nil
		case <-ticker.C:
			if _, _, err := s.Collect(ctx); err != nil {
				return err
			}
		}
	}
}
