package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/tigerwatch/internal/api"
	"github.com/user/tigerwatch/internal/config"
	"github.com/user/tigerwatch/internal/delivery"
	"github.com/user/tigerwatch/internal/scheduler"
	"github.com/user/tigerwatch/internal/session"
	"github.com/user/tigerwatch/internal/state"
	"github.com/user/tigerwatch/internal/telegram"
	"github.com/user/tigerwatch/internal/toolset"
	"github.com/user/tigerwatch/internal/transport"
	"github.com/user/tigerwatch/internal/types"
)

// maxSweepDuration bounds how long one unattended sweep may run before the
// session is abandoned.
const maxSweepDuration = 30 * time.Minute

var (
	sweepSchedule string
	sweepPrompt   string
	sweepTools    []string
	sweepNotify   string
)

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.AddCommand(sweepAddCmd, sweepListCmd, sweepRemoveCmd, sweepEnableCmd, sweepDisableCmd, sweepRunCmd)

	sweepAddCmd.Flags().StringVar(&sweepSchedule, "schedule", "", "cron expression (required)")
	sweepAddCmd.Flags().StringVar(&sweepPrompt, "prompt", "", "investigation prompt (required)")
	sweepAddCmd.Flags().StringSliceVar(&sweepTools, "tools", nil, "tool names the agent pool may use")
	sweepAddCmd.Flags().StringVar(&sweepNotify, "notify", "", "completion target, e.g. telegram:12345")
	sweepAddCmd.MarkFlagRequired("schedule")
	sweepAddCmd.MarkFlagRequired("prompt")
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Manage recurring investigation sweeps",
}

func sweepStore(cfg *config.Config) *state.SweepStore {
	return state.NewSweepStore(filepath.Join(cfg.DataDir, "sweeps.json"))
}

var sweepAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a recurring sweep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		store := sweepStore(cfg)

		sweep := &state.Sweep{
			Name:     args[0],
			Prompt:   sweepPrompt,
			Schedule: sweepSchedule,
			Tools:    sweepTools,
			Notify:   sweepNotify,
			Enabled:  true,
		}
		if err := store.Add(sweep); err != nil {
			return err
		}
		fmt.Printf("Sweep %s added.\n", sweep.Name)
		return nil
	},
}

var sweepListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sweeps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sweeps, err := sweepStore(cfg).List()
		if err != nil {
			return err
		}
		if len(sweeps) == 0 {
			fmt.Println("No sweeps configured.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCHEDULE\tENABLED\tNOTIFY\tPROMPT")
		for _, s := range sweeps {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", s.Name, s.Schedule, s.Enabled, s.Notify, s.Prompt)
		}
		return w.Flush()
	},
}

var sweepRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a sweep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := sweepStore(cfg).Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Sweep %s removed.\n", args[0])
		return nil
	},
}

var sweepEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a sweep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return sweepStore(cfg).SetEnabled(args[0], true)
	},
}

var sweepDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a sweep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		return sweepStore(cfg).SetEnabled(args[0], false)
	},
}

var sweepRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sweep daemon",
	Args:  cobra.NoArgs,
	RunE:  runSweepDaemon,
}

func runSweepDaemon(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	registry := delivery.NewRegistry(int64(cfg.MaxConcurrentDelivery))
	if cfg.Telegram.Token != "" {
		notifier, err := telegram.New(cfg.Telegram.Token)
		if err != nil {
			return fmt.Errorf("create telegram notifier: %w", err)
		}
		registry.Register("telegram:", notifier.Send)
		slog.Info("telegram notifier registered")
	} else {
		slog.Warn("telegram notifier disabled (no token)")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sched := scheduler.New(sweepStore(cfg), func(sweep *state.Sweep) {
		runSweep(ctx, cfg, registry, sweep)
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	slog.Info("sweep daemon started", "data_dir", cfg.DataDir, "api", cfg.API.BaseURL)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	return nil
}

// runSweep launches one unattended investigation and notifies the sweep's
// target when it completes. Approvals cannot be answered without a human,
// so they are rejected.
func runSweep(ctx context.Context, cfg *config.Config, registry *delivery.Registry, sweep *state.Sweep) {
	client := api.NewClient(cfg.API.BaseURL)
	tools := toolset.NewSelector()
	if catalog, err := client.GetTools(ctx); err != nil {
		slog.Warn("tool catalog unavailable for sweep", "sweep", sweep.Name, "error", err)
	} else {
		tools.Load(catalog)
		for _, name := range sweep.Tools {
			tools.Toggle(name)
		}
	}

	sessions := state.NewSessionStore(cfg.DataDir)
	transcripts := state.NewTranscriptStore(cfg.DataDir)

	done := make(chan types.InvestigationID, 1)
	ctrl := session.New(client, tools,
		session.WithStores(sessions, transcripts),
		session.WithPriority(cfg.Investigation.Priority),
		session.WithRedirectDelay(0),
		session.WithOnComplete(func(id types.InvestigationID) {
			done <- id
		}),
	)
	defer ctrl.Close()

	runCtx, cancel := context.WithTimeout(ctx, maxSweepDuration)
	defer cancel()

	ch := transport.NewChannel(cfg.API.StreamURL)
	go ch.Run(runCtx)
	go ctrl.Run(runCtx, ch)

	// Unattended: reject approval requests as they appear.
	go func() {
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ctrl.Updates():
				if ctrl.PendingApproval() != nil {
					slog.Warn("rejecting approval during unattended sweep", "sweep", sweep.Name)
					ctrl.ResolveApproval(runCtx, false, "unattended sweep")
				}
			}
		}
	}()

	if err := ctrl.Submit(runCtx, sweep.Prompt); err != nil {
		slog.Error("sweep submission rejected", "sweep", sweep.Name, "error", err)
		return
	}
	if ctrl.InvestigationID() == "" {
		slog.Error("sweep launch failed", "sweep", sweep.Name)
		return
	}

	select {
	case id := <-done:
		slog.Info("sweep completed", "sweep", sweep.Name, "investigation_id", id)
		if sweep.Notify != "" {
			message := fmt.Sprintf("Sweep %q complete: %s/investigations/%s", sweep.Name, cfg.API.BaseURL, id)
			registry.Broadcast(ctx, []string{sweep.Notify}, message)
		}
	case <-runCtx.Done():
		slog.Warn("sweep abandoned", "sweep", sweep.Name, "investigation_id", ctrl.InvestigationID())
	}
}
