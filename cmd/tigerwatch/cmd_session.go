package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/tigerwatch/internal/render"
	"github.com/user/tigerwatch/internal/state"
	"github.com/user/tigerwatch/internal/types"
)

// transcriptExcerptTokens bounds each replayed message when showing a
// stored transcript.
const transcriptExcerptTokens = 400

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionClearCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage archived launch sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions := state.NewSessionStore(cfg.DataDir)
		transcripts := state.NewTranscriptStore(cfg.DataDir)

		ctx := context.Background()
		list, err := sessions.List(ctx)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(list) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tINVESTIGATION\tTITLE\tSTATUS\tMESSAGES\tCREATED")
		for _, s := range list {
			count, err := transcripts.Count(ctx, s.SessionID)
			if err != nil {
				count = 0
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.SessionID,
				s.InvestigationID,
				s.Title,
				s.Status,
				count,
				s.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Replay a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		transcripts := state.NewTranscriptStore(cfg.DataDir)

		msgs, err := transcripts.Tail(context.Background(), types.SessionID(args[0]), 0)
		if err != nil {
			return fmt.Errorf("read transcript: %w", err)
		}
		if len(msgs) == 0 {
			fmt.Println("No transcript found.")
			return nil
		}

		for _, msg := range msgs {
			content := render.Excerpt(render.ToMarkdown(msg.Content), transcriptExcerptTokens)
			fmt.Printf("[%s] %s: %s\n", msg.At.Format("15:04:05"), msg.Role, content)
			if msg.ToolUsed != "" {
				fmt.Printf("          tool: %s\n", msg.ToolUsed)
			}
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id|all>",
	Short: "Clear a session or all sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessionsDir := filepath.Join(cfg.DataDir, "sessions")

		if args[0] == "all" {
			if err := os.RemoveAll(sessionsDir); err != nil {
				return fmt.Errorf("remove sessions directory: %w", err)
			}
			fmt.Println("All sessions cleared.")
			return nil
		}

		// Validate path to prevent traversal
		sessionDir := filepath.Join(sessionsDir, args[0])
		if !strings.HasPrefix(sessionDir, sessionsDir+string(os.PathSeparator)) {
			return fmt.Errorf("invalid session id: %s", args[0])
		}
		if err := os.RemoveAll(sessionDir); err != nil {
			return fmt.Errorf("remove session directory: %w", err)
		}
		fmt.Printf("Session %s cleared.\n", args[0])
		return nil
	},
}
