package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	pingAttempts = 5
	pingTimeout  = 3 * time.Second
	pingBackoff  = time.Second
)

// pingUntilReady retries ping so the server tolerates a database or Redis
// container that is still starting. The backoff doubles after every attempt.
func pingUntilReady(ctx context.Context, name string, ping func(context.Context) error, log zerolog.Logger) error {
	wait := pingBackoff
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}

		log.Warn().Err(err).
			Str("target", name).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("Connection not ready, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return fmt.Errorf("ping %s after %d attempts: %w", name, pingAttempts, err)
}
