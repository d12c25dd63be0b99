package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/blzulian/agemetrics/internal/model"
)

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	hash := s.MatchHash
	if len(hash) > 12 {
		hash = hash[:12]
	}
	fmt.Fprintf(w, "\nMap: %s  |  Date: %s  |  Type: %s  |  Duration: %s  |  Hash: %s\n\n",
		s.MapName, s.PlayedAt, s.GameType, clock(s.DurationSecs), hash)
}

// PrintPlayerTable prints the per-player overview table to stdout.
// If focusName is non-empty, that player's row is marked with ">".
func PrintPlayerTable(metrics []model.PlayerMetrics, focusName string) {
	PrintPlayerTableTo(os.Stdout, metrics, focusName)
}

// PrintPlayerTableTo writes the overview table to the provided writer.
func PrintPlayerTableTo(w io.Writer, metrics []model.PlayerMetrics, focusName string) {
	table := newTable(w)
	table.Header(" ", "NAME", "CIV", "W", "ELO", "EAPM", "OPENING",
		"FEUDAL", "CASTLE", "IMPERIAL", "IDLE", "EFF_IDLE", "WALLS", "TCS")

	for i := range metrics {
		m := &metrics[i]
		marker := " "
		if focusName != "" && m.Name == focusName {
			marker = ">"
		}
		winner := " "
		if m.Winner {
			winner = "W"
		}
		idleStr := "—"
		if m.Idle != nil {
			idleStr = clock(m.Idle.TotalSecs)
		}
		effStr := "—"
		if lo, hi, ok := m.EffectiveIdle(); ok {
			effStr = fmt.Sprintf("%s–%s", clock(lo), clock(hi))
		}
		wallStr := "—"
		if m.WallTiles != nil {
			wallStr = strconv.Itoa(m.WallTiles.Total())
		}
		table.Append(
			marker,
			m.Name,
			m.Civilization,
			winner,
			optInt(m.ELO),
			optFmt(m.EAPM, "%.0f"),
			m.Opening,
			ageClock(m, model.EraFeudal),
			ageClock(m, model.EraCastle),
			ageClock(m, model.EraImperial),
			idleStr,
			effStr,
			wallStr,
			strconv.Itoa(m.TCFinalCount),
		)
	}
	table.Render()
}

// PrintIdleTable prints the per-era idle breakdown with gap bands.
func PrintIdleTable(w io.Writer, metrics []model.PlayerMetrics, focusName string) {
	table := newTable(w)
	table.Header(" ", "NAME", "IDLE_DARK", "IDLE_FEUDAL", "IDLE_CASTLE", "IDLE_IMP",
		"TOTAL", "GAPS_S", "GAPS_M", "GAPS_L")

	for i := range metrics {
		m := &metrics[i]
		marker := " "
		if focusName != "" && m.Name == focusName {
			marker = ">"
		}
		if m.Idle == nil {
			table.Append(marker, m.Name, "—", "—", "—", "—", "—", "—", "—", "—")
			continue
		}
		b := m.Idle
		table.Append(
			marker,
			m.Name,
			clock(b.ByEra.Dark),
			clock(b.ByEra.Feudal),
			clock(b.ByEra.Castle),
			clock(b.ByEra.Imperial),
			clock(b.TotalSecs),
			strconv.Itoa(b.Bands.Short),
			strconv.Itoa(b.Bands.Medium),
			strconv.Itoa(b.Bands.Long),
		)
	}
	table.Render()
}

// PrintHousingTable prints the dual-bound housed-time breakdown. Eras whose
// lower bound was contradicted by the simulation are marked with "!".
func PrintHousingTable(w io.Writer, metrics []model.PlayerMetrics, focusName string) {
	table := newTable(w)
	table.Header(" ", "NAME", "DARK", "FEUDAL", "CASTLE", "IMPERIAL", "TOTAL", "EPISODES")

	for i := range metrics {
		m := &metrics[i]
		marker := " "
		if focusName != "" && m.Name == focusName {
			marker = ">"
		}
		if m.Housing == nil {
			table.Append(marker, m.Name, "—", "—", "—", "—", "—", "—")
			continue
		}
		r := m.Housing
		cells := []any{marker, m.Name}
		for _, e := range model.AllEras {
			cells = append(cells, housedRange(r, e))
		}
		cells = append(cells,
			fmt.Sprintf("%s–%s", clock(r.LowerTotal()), clock(r.UpperTotal())),
			strconv.Itoa(m.HousedEpisodes))
		table.Append(cells...)
	}
	table.Render()
}

// PrintCareerOverview prints cross-match averages for one player.
func PrintCareerOverview(w io.Writer, c *model.PlayerCareer) {
	table := newTable(w)
	table.Header("PLAYER", "GAMES", "WINS", "WIN%", "AVG_DUR", "AVG_EAPM", "AVG_IDLE", "AVG_HOUSED")

	housed := "—"
	if c.AvgHousedLower != nil && c.AvgHousedUpper != nil {
		housed = fmt.Sprintf("%s–%s", clock(*c.AvgHousedLower), clock(*c.AvgHousedUpper))
	}
	avgIdle := "—"
	if c.AvgIdleSecs != nil {
		avgIdle = clock(*c.AvgIdleSecs)
	}
	table.Append(
		c.Name,
		strconv.Itoa(c.Games),
		strconv.Itoa(c.Wins),
		fmt.Sprintf("%.0f%%", c.WinRate()),
		clock(c.AvgDurationSecs),
		optFmt(c.AvgEAPM, "%.0f"),
		avgIdle,
		housed,
	)
	table.Render()
}

// PrintWinRateTable prints one grouped win-rate breakdown (civ, map, opening).
func PrintWinRateTable(w io.Writer, title string, groups []model.GroupRecord) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	table := newTable(w)
	table.Header(title, "GAMES", "WINS", "WIN%")
	for i := range groups {
		g := &groups[i]
		table.Append(g.Key, strconv.Itoa(g.Games), strconv.Itoa(g.Wins),
			fmt.Sprintf("%.0f%%", g.WinRate()))
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func housedRange(r *model.HousedRange, e model.Era) string {
	if r.EraUnreliable(e) {
		return fmt.Sprintf("!–%s", clock(r.Upper.Get(e)))
	}
	return fmt.Sprintf("%s–%s", clock(r.Lower.Get(e)), clock(r.Upper.Get(e)))
}

func ageClock(m *model.PlayerMetrics, e model.Era) string {
	if secs := m.AgeUpSecs(e); secs != nil {
		return clock(*secs)
	}
	return "—"
}

// clock formats seconds as m:ss match time.
func clock(secs float64) string {
	total := int(secs + 0.5)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func optFmt(v *float64, format string) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf(format, *v)
}

func optInt(v *int) string {
	if v == nil {
		return "—"
	}
	return strconv.Itoa(*v)
}
