package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blzulian/agemetrics/internal/analyzer"
	"github.com/blzulian/agemetrics/internal/decoder"
	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
	"github.com/blzulian/agemetrics/internal/report"
	"github.com/blzulian/agemetrics/internal/storage"
)

var (
	focusPlayer   string
	balancePath   string
	strictOpening bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <match.actions.json>",
	Short: "Analyze an action log and store the metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&focusPlayer, "player", "", "focus player name")
	ingestCmd.Flags().StringVar(&balancePath, "balance", "", "path to a balance-table YAML override")
	ingestCmd.Flags().BoolVar(&strictOpening, "strict-opening", false,
		"cut opening-classifier unit counts at the Castle age-up")
}

func runIngest(cmd *cobra.Command, args []string) error {
	logPath := args[0]

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	bal := gamedata.Default()
	if balancePath != "" {
		bal, err = gamedata.Load(balancePath)
		if err != nil {
			return fmt.Errorf("load balance table: %w", err)
		}
	}

	fmt.Fprintf(os.Stdout, "Decoding %s...\n", logPath)
	raw, err := decoder.DecodeFile(logPath)
	if err != nil {
		return err
	}

	exists, err := db.MatchExists(raw.MatchHash)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if exists {
		fmt.Fprintf(os.Stdout, "Match %s already stored — showing cached results.\n\n", raw.MatchHash[:12])
		return showByPrefix(db, raw.MatchHash)
	}

	metrics, err := analyzer.Analyze(raw, bal, analyzer.Options{StrictOpeningWindow: strictOpening})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	summary := model.MatchSummary{
		MatchHash:    raw.MatchHash,
		MapName:      raw.MapName,
		PlayedAt:     raw.PlayedAt,
		GameType:     raw.GameType,
		DurationSecs: raw.DurationSecs,
		PopLimit:     raw.PopLimit,
		Completed:    raw.Completed,
	}

	if err := db.InsertMatch(summary); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	if err := db.InsertPlayerMetrics(metrics); err != nil {
		return fmt.Errorf("insert player metrics: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, summary)
	report.PrintPlayerTable(metrics, focusPlayer)
	report.PrintIdleTable(os.Stdout, metrics, focusPlayer)
	report.PrintHousingTable(os.Stdout, metrics, focusPlayer)
	return nil
}

func showByPrefix(db *storage.DB, prefix string) error {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil || match == nil {
		return fmt.Errorf("match not found: %s", prefix)
	}
	metrics, err := db.GetPlayerMetrics(match.MatchHash)
	if err != nil {
		return err
	}
	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerTable(metrics, focusPlayer)
	report.PrintIdleTable(os.Stdout, metrics, focusPlayer)
	report.PrintHousingTable(os.Stdout, metrics, focusPlayer)
	return nil
}
