package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/tigerwatch/internal/api"
	"github.com/user/tigerwatch/internal/toolset"
)

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsListCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Inspect the external tool catalog",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		client := api.NewClient(cfg.API.BaseURL)
		catalog, err := client.GetTools(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetch tool catalog: %w", err)
		}

		tools := toolset.NewSelector()
		tools.Load(catalog)

		if tools.Len() == 0 {
			fmt.Println("No tools discovered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SERVER\tNAME\tDESCRIPTION")
		for _, tool := range tools.Catalog() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", tool.Server, tool.Name, tool.Description)
		}
		return w.Flush()
	},
}
