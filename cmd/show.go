package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blzulian/agemetrics/internal/report"
	"github.com/blzulian/agemetrics/internal/storage"
)

var showPlayer string

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored match metrics by hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "highlight player name")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		fmt.Fprintf(os.Stderr, "No match found with hash prefix %q\n", prefix)
		return nil
	}

	metrics, err := db.GetPlayerMetrics(match.MatchHash)
	if err != nil {
		return fmt.Errorf("get player metrics: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerTable(metrics, showPlayer)
	report.PrintIdleTable(os.Stdout, metrics, showPlayer)
	report.PrintHousingTable(os.Stdout, metrics, showPlayer)
	return nil
}
