package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/user/tigerwatch/internal/api"
	"github.com/user/tigerwatch/internal/session"
	"github.com/user/tigerwatch/internal/state"
	"github.com/user/tigerwatch/internal/toolset"
	"github.com/user/tigerwatch/internal/transport"
	"github.com/user/tigerwatch/internal/tui"
	"github.com/user/tigerwatch/internal/types"
)

func init() {
	rootCmd.AddCommand(launchCmd)
}

var launchCmd = &cobra.Command{
	Use:   "launch [input]",
	Short: "Start an interactive investigation session",
	RunE:  runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	client := api.NewClient(cfg.API.BaseURL)
	tools := toolset.NewSelector()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if catalog, err := client.GetTools(ctx); err != nil {
		slog.Warn("tool catalog unavailable", "error", err)
	} else {
		tools.Load(catalog)
	}

	sessions := state.NewSessionStore(cfg.DataDir)
	transcripts := state.NewTranscriptStore(cfg.DataDir)

	var program *tea.Program
	ctrl := session.New(client, tools,
		session.WithStores(sessions, transcripts),
		session.WithPriority(cfg.Investigation.Priority),
		session.WithRedirectDelay(time.Duration(cfg.RedirectDelaySeconds)*time.Second),
		session.WithOnComplete(func(id types.InvestigationID) {
			if program != nil {
				program.Send(tui.RedirectMsg{InvestigationID: id})
			}
		}),
	)
	defer ctrl.Close()

	ch := transport.NewChannel(cfg.API.StreamURL)
	go ch.Run(ctx)
	go ctrl.Run(ctx, ch)

	program = tea.NewProgram(tui.NewModel(ctrl), tea.WithAltScreen())

	if len(args) > 0 {
		input := strings.Join(args, " ")
		go func() {
			if err := ctrl.Submit(ctx, input); err != nil {
				slog.Warn("initial submission rejected", "error", err)
			}
		}()
	}

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run session ui: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Redirect() != "" {
		fmt.Printf("Workspace: %s/investigations/%s\n", cfg.API.BaseURL, m.Redirect())
	}
	return nil
}
