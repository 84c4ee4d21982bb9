package poll

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrBudgetExhausted reports that polling stopped because the retry or
// wall-clock budget ran out before the predicate was satisfied
var ErrBudgetExhausted = errors.New("poll budget exhausted")

// errNotDone marks an attempt whose predicate was simply not yet
// satisfied, as opposed to a probe failure
var errNotDone = errors.New("condition not met")

// Config bounds a polling loop
type Config struct {
	Initial    time.Duration // first backoff interval, doubled each attempt
	MaxRetries int           // additional probes after the first
	Budget     time.Duration // wall-clock cap across all attempts; 0 means no cap
}

// DefaultConfig returns polling bounds suited to waiting on files
// still being written
func DefaultConfig() Config {
	return Config{
		Initial:    100 * time.Millisecond,
		MaxRetries: 6,
		Budget:     30 * time.Second,
	}
}

// Until probes until the predicate reports done, backing off
// exponentially between attempts. A probe error stops polling
// immediately; exhausting the attempt or wall-clock budget returns
// ErrBudgetExhausted.
func Until(ctx context.Context, cfg Config, probe func(context.Context) (bool, error)) error {
	if cfg.Initial <= 0 {
		cfg.Initial = 100 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 6
	}

	backoff := retry.NewExponential(cfg.Initial)
	backoff = retry.WithMaxRetries(uint64(cfg.MaxRetries), backoff)
	if cfg.Budget > 0 {
		backoff = retry.WithMaxDuration(cfg.Budget, backoff)
	}

	start := time.Now()
	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		done, probeErr := probe(ctx)
		if probeErr != nil {
			return probeErr
		}
		if !done {
			return retry.RetryableError(errNotDone)
		}
		return nil
	})

	if errors.Is(err, errNotDone) {
		return fmt.Errorf("%w after %d probes in %s", ErrBudgetExhausted, attempts, time.Since(start).Round(time.Millisecond))
	}
	return err
}

// FileSettled returns a probe that reports true once the file's size
// and modification time stop changing between calls. A file that does
// not exist yet is not settled, not an error.
func FileSettled(path string) func(context.Context) (bool, error) {
	var lastSize int64 = -1
	var lastMod time.Time

	return func(context.Context) (bool, error) {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				lastSize = -1
				return false, nil
			}
			return false, err
		}

		settled := lastSize >= 0 &&
			info.Size() == lastSize &&
			info.ModTime().Equal(lastMod)

		lastSize = info.Size()
		lastMod = info.ModTime()
		return settled, nil
	}
}
