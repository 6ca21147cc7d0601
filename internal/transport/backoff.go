// internal/transport/backoff.go
package transport

import (
	"math"
	"time"
)

// Backoff computes reconnect delays with exponential growth.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
}

// DefaultBackoff returns a Backoff with sensible defaults:
// 1s initial delay, 2x multiplier, 30s cap.
func DefaultBackoff() *Backoff {
	return &Backoff{
		Initial:    1 * time.Second,
		Max:        30 * time.Second,
		Multiplier: 2.0,
	}
}

// Delay returns the wait before the given attempt number (1-indexed),
// Initial * Multiplier^(attempt-1), capped at Max.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt-1))
	if delay > float64(b.Max) {
		return b.Max
	}
	return time.Duration(delay)
}
