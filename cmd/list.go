package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blzulian/agemetrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'agemetrics ingest <match.actions.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %-8s  %8s  %s\n",
		"HASH", "MAP", "DATE", "TYPE", "DURATION", "DONE")
	fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %-8s  %8s  %s\n",
		"──────────────", "────────────────", "────────────────────", "────────", "────────", "────")
	for _, m := range matches {
		done := ""
		if m.Completed {
			done = "yes"
		}
		mins := int(m.DurationSecs) / 60
		fmt.Fprintf(os.Stdout, "%-14s  %-16s  %-20s  %-8s  %7dm  %s\n",
			m.MatchHash[:12], m.MapName, m.PlayedAt, m.GameType, mins, done)
	}
	return nil
}
