package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blzulian/agemetrics/internal/report"
	"github.com/blzulian/agemetrics/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats <player-name>",
	Short: "Show a player's career stats across stored matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	name := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	career, err := db.GetPlayerCareer(name)
	if err != nil {
		return fmt.Errorf("get career: %w", err)
	}
	if career == nil {
		fmt.Fprintf(os.Stderr, "No stored matches for player %q\n", name)
		return nil
	}

	report.PrintCareerOverview(os.Stdout, career)

	byCiv, err := db.WinRateByCivilization(name)
	if err != nil {
		return fmt.Errorf("win rate by civ: %w", err)
	}
	report.PrintWinRateTable(os.Stdout, "CIVILIZATION", byCiv)

	byMap, err := db.WinRateByMap(name)
	if err != nil {
		return fmt.Errorf("win rate by map: %w", err)
	}
	report.PrintWinRateTable(os.Stdout, "MAP", byMap)

	byOpening, err := db.WinRateByOpening(name)
	if err != nil {
		return fmt.Errorf("win rate by opening: %w", err)
	}
	report.PrintWinRateTable(os.Stdout, "OPENING", byOpening)
	return nil
}
