// internal/delivery/registry.go

// Package delivery routes completion notices to external channels.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Handler delivers a message to a target identified by a prefixed address
// (e.g. "telegram:12345").
type Handler func(target, message string) error

// Registry routes messages to the appropriate delivery handler based on
// target prefix.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	sem      *semaphore.Weighted
}

// NewRegistry creates an empty delivery registry allowing up to
// maxConcurrent simultaneous deliveries during a broadcast.
func NewRegistry(maxConcurrent int64) *Registry {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Registry{
		handlers: make(map[string]Handler),
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

// Register adds a handler for targets starting with prefix.
func (r *Registry) Register(prefix string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[prefix] = handler
}

// Deliver finds the handler matching the target prefix and calls it.
// Returns an error if no handler is registered for the prefix.
func (r *Registry) Deliver(target, message string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for prefix, handler := range r.handlers {
		if strings.HasPrefix(target, prefix) {
			return handler(target, message)
		}
	}
	return fmt.Errorf("no delivery handler for target: %s", target)
}

// Broadcast delivers the message to every target, bounded by the registry's
// concurrency limit. Individual failures are logged; Broadcast returns once
// all deliveries finish or ctx is cancelled.
func (r *Registry) Broadcast(ctx context.Context, targets []string, message string) {
	var wg sync.WaitGroup
	for _, target := range targets {
		if err := r.sem.Acquire(ctx, 1); err != nil {
			return
		}
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			defer r.sem.Release(1)
			if err := r.Deliver(target, message); err != nil {
				slog.Error("delivery failed", "target", target, "error", err)
			}
		}(target)
	}
	wg.Wait()
}
