package retry

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff returns the delay to wait after the given failed attempt (1-based)
// before the next one starts.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// Constant waits the same interval between every attempt.
type Constant time.Duration

func (c Constant) Delay(int) time.Duration { return time.Duration(c) }

// Exponential grows the delay by Multiplier after each failed attempt,
// starting at Base and capped at Max.
type Exponential struct {
	Base       time.Duration
	Max        time.Duration // 0 = uncapped
	Multiplier float64       // 0 = 2

	// Jitter scales each delay by a random factor in [0.5, 1.5) before
	// the Max cap is applied.
	Jitter bool
}

func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	mult := e.Multiplier
	if mult <= 0 {
		mult = 2
	}

	d := float64(e.Base) * math.Pow(mult, float64(attempt-1))
	if e.Jitter {
		// #nosec G404
		d *= 0.5 + rand.Float64()
	}

	// cap last so jitter never exceeds Max
	if e.Max > 0 && d > float64(e.Max) {
		d = float64(e.Max)
	}

	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Policy configures an Executor. It is never modified after construction and
// may be shared between executors.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int

	// Backoff defines the wait between attempts. nil means no wait.
	Backoff Backoff

	// Retriable reports whether a failure may be retried. nil means Always.
	// Errors marked with Permanent are never retried.
	Retriable func(error) bool
}

// DefaultPolicy retries any non-permanent failure up to four attempts with
// an exponential backoff starting at 100ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		Backoff:     Exponential{Base: 100 * time.Millisecond, Max: 10 * time.Second},
		Retriable:   Always,
	}
}

var errInvalidPolicy = errors.New("invalid retry policy")

// Validate checks the policy can drive an executor.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be >= 1, got %d", errInvalidPolicy, p.MaxAttempts)
	}
	return nil
}

func (p Policy) retriable(err error) bool {
	if IsPermanent(err) {
		return false
	}
	if p.Retriable == nil {
		return Always(err)
	}
	return p.Retriable(err)
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Backoff == nil {
		return 0
	}
	return p.Backoff.Delay(attempt)
}
