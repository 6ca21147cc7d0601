// internal/scheduler/scheduler.go

// Package scheduler fires recurring investigation sweeps on cron schedules.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/user/tigerwatch/internal/state"
)

// Handler is the callback invoked when a sweep fires.
type Handler func(sweep *state.Sweep)

// Scheduler evaluates cron expressions from the sweep store and fires
// sweeps through a handler callback.
type Scheduler struct {
	store   *state.SweepStore
	handler Handler
	cron    *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler backed by the given sweep store. The handler is
// called each time a sweep fires.
func New(store *state.SweepStore, handler Handler) *Scheduler {
	return &Scheduler{
		store:   store,
		handler: handler,
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// Start loads sweeps from the store, registers enabled sweeps that have a
// schedule as cron entries, and starts the cron ticker.
func (s *Scheduler) Start() error {
	sweeps, err := s.store.List()
	if err != nil {
		return err
	}

	for _, sweep := range sweeps {
		if sweep.Schedule == "" || !sweep.Enabled {
			continue
		}

		sweep := sweep
		_, err := s.cron.AddFunc(sweep.Schedule, func() {
			slog.Info("cron firing sweep", "name", sweep.Name, "schedule", sweep.Schedule)
			s.handler(sweep)
		})
		if err != nil {
			slog.Error("invalid cron schedule", "name", sweep.Name, "schedule", sweep.Schedule, "error", err)
			continue
		}
		slog.Info("scheduled sweep", "name", sweep.Name, "schedule", sweep.Schedule)
	}

	s.cron.Start()
	return nil
}

// Reload stops the existing cron, creates a new one, and calls Start again.
func (s *Scheduler) Reload() error {
	s.cron.Stop()
	s.cron = cron.New(cron.WithParser(cronParser))
	return s.Start()
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
