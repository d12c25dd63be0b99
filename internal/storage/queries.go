package storage

import (
	"database/sql"
	"fmt"

	"github.com/blzulian/agemetrics/internal/model"
)

// MatchExists returns true if a match with the given hash is already stored.
func (db *DB) MatchExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(summary model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(hash, map_name, played_at, game_type, duration_secs, pop_limit, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.MatchHash, summary.MapName, summary.PlayedAt, summary.GameType,
		summary.DurationSecs, summary.PopLimit, boolInt(summary.Completed),
	)
	return err
}

// InsertPlayerMetrics bulk-inserts per-player records in a transaction,
// including their age-up and town-center-count rows.
func (db *DB) InsertPlayerMetrics(metrics []model.PlayerMetrics) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_players(
			match_hash, player_id, name, civilization, winner, elo,
			eapm, opening,
			idle_total, idle_dark, idle_feudal, idle_castle, idle_imperial,
			gaps_short, gaps_medium, gaps_long,
			housed_lower_dark, housed_lower_feudal, housed_lower_castle, housed_lower_imperial,
			housed_upper_dark, housed_upper_feudal, housed_upper_castle, housed_upper_imperial,
			housed_unreliable, housed_episodes,
			wall_dark, wall_feudal, wall_castle, wall_imperial,
			first_military_secs, military_timing_index, farm_gap_avg_secs, tc_final_count
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	ageStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_age_ups(match_hash, player_id, era, secs)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer ageStmt.Close()

	tcStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_tc_counts(match_hash, player_id, secs, tc_count)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer tcStmt.Close()

	for _, m := range metrics {
		args := []any{
			m.MatchHash, m.PlayerID, m.Name, m.Civilization, boolInt(m.Winner), m.ELO,
			m.EAPM, m.Opening,
		}
		args = append(args, idleArgs(m.Idle)...)
		args = append(args, housingArgs(m.Housing)...)
		args = append(args, m.HousedEpisodes)
		args = append(args, wallArgs(m.WallTiles)...)
		args = append(args, m.FirstMilitarySecs, m.MilitaryTimingIndex, m.FarmGapAvgSecs, m.TCFinalCount)

		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert match_players for %s: %w", m.Name, err)
		}
		for _, up := range m.AgeUps {
			if _, err := ageStmt.Exec(m.MatchHash, m.PlayerID, up.Era.String(), up.Seconds); err != nil {
				return fmt.Errorf("insert match_age_ups for %s: %w", m.Name, err)
			}
		}
		for _, pt := range m.TCProgression {
			if _, err := tcStmt.Exec(m.MatchHash, m.PlayerID, pt.Seconds, pt.Count); err != nil {
				return fmt.Errorf("insert match_tc_counts for %s: %w", m.Name, err)
			}
		}
	}
	return tx.Commit()
}

// ListMatches returns all stored match summaries ordered by played_at desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT hash, map_name, played_at, game_type, duration_secs, pop_limit, completed
		FROM matches ORDER BY played_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		var completedInt int
		if err := rows.Scan(&s.MatchHash, &s.MapName, &s.PlayedAt, &s.GameType,
			&s.DurationSecs, &s.PopLimit, &completedInt); err != nil {
			return nil, err
		}
		s.Completed = completedInt != 0
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose hash starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	var completedInt int
	err := db.conn.QueryRow(`
		SELECT hash, map_name, played_at, game_type, duration_secs, pop_limit, completed
		FROM matches WHERE hash LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.MatchHash, &s.MapName, &s.PlayedAt, &s.GameType,
			&s.DurationSecs, &s.PopLimit, &completedInt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Completed = completedInt != 0
	return &s, nil
}

// GetPlayerMetrics returns all player records for a match hash.
func (db *DB) GetPlayerMetrics(matchHash string) ([]model.PlayerMetrics, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, name, civilization, winner, elo,
		       eapm, opening,
		       idle_total, idle_dark, idle_feudal, idle_castle, idle_imperial,
		       gaps_short, gaps_medium, gaps_long,
		       housed_lower_dark, housed_lower_feudal, housed_lower_castle, housed_lower_imperial,
		       housed_upper_dark, housed_upper_feudal, housed_upper_castle, housed_upper_imperial,
		       housed_unreliable, housed_episodes,
		       wall_dark, wall_feudal, wall_castle, wall_imperial,
		       first_military_secs, military_timing_index, farm_gap_avg_secs, tc_final_count
		FROM match_players WHERE match_hash = ?
		ORDER BY player_id`, matchHash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMetrics
	for rows.Next() {
		var m model.PlayerMetrics
		var winnerInt, unreliable int
		var idleTotal, idleDark, idleFeudal, idleCastle, idleImperial *float64
		var gapsShort, gapsMedium, gapsLong *int
		var hl, hu [4]*float64
		var wallDark, wallFeudal, wallCastle, wallImperial *int
		if err := rows.Scan(
			&m.PlayerID, &m.Name, &m.Civilization, &winnerInt, &m.ELO,
			&m.EAPM, &m.Opening,
			&idleTotal, &idleDark, &idleFeudal, &idleCastle, &idleImperial,
			&gapsShort, &gapsMedium, &gapsLong,
			&hl[0], &hl[1], &hl[2], &hl[3],
			&hu[0], &hu[1], &hu[2], &hu[3],
			&unreliable, &m.HousedEpisodes,
			&wallDark, &wallFeudal, &wallCastle, &wallImperial,
			&m.FirstMilitarySecs, &m.MilitaryTimingIndex, &m.FarmGapAvgSecs, &m.TCFinalCount,
		); err != nil {
			return nil, err
		}
		m.MatchHash = matchHash
		m.Winner = winnerInt != 0
		if idleTotal != nil {
			m.Idle = &model.IdleBreakdown{
				TotalSecs: *idleTotal,
				ByEra: model.EraSeconds{
					Dark: deref(idleDark), Feudal: deref(idleFeudal),
					Castle: deref(idleCastle), Imperial: deref(idleImperial),
				},
				Bands: model.GapBands{
					Short: derefInt(gapsShort), Medium: derefInt(gapsMedium), Long: derefInt(gapsLong),
				},
			}
		}
		if hu[0] != nil {
			r := model.HousedRange{
				Lower: model.EraSeconds{Dark: deref(hl[0]), Feudal: deref(hl[1]), Castle: deref(hl[2]), Imperial: deref(hl[3])},
				Upper: model.EraSeconds{Dark: deref(hu[0]), Feudal: deref(hu[1]), Castle: deref(hu[2]), Imperial: deref(hu[3])},
			}
			for i := range r.Unreliable {
				r.Unreliable[i] = unreliable&(1<<i) != 0
			}
			m.Housing = &r
		}
		if wallDark != nil {
			m.WallTiles = &model.EraCounts{
				Dark: *wallDark, Feudal: derefInt(wallFeudal),
				Castle: derefInt(wallCastle), Imperial: derefInt(wallImperial),
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := db.loadAgeUps(&out[i]); err != nil {
			return nil, err
		}
		if err := db.loadTCProgression(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (db *DB) loadAgeUps(m *model.PlayerMetrics) error {
	rows, err := db.conn.Query(`
		SELECT era, secs FROM match_age_ups
		WHERE match_hash = ? AND player_id = ? ORDER BY secs`, m.MatchHash, m.PlayerID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var era string
		var secs float64
		if err := rows.Scan(&era, &secs); err != nil {
			return err
		}
		m.AgeUps = append(m.AgeUps, model.AgeUp{Era: model.ParseEra(era), Seconds: secs})
	}
	return rows.Err()
}

func (db *DB) loadTCProgression(m *model.PlayerMetrics) error {
	rows, err := db.conn.Query(`
		SELECT secs, tc_count FROM match_tc_counts
		WHERE match_hash = ? AND player_id = ? ORDER BY secs`, m.MatchHash, m.PlayerID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pt model.TCPoint
		if err := rows.Scan(&pt.Seconds, &pt.Count); err != nil {
			return err
		}
		m.TCProgression = append(m.TCProgression, pt)
	}
	return rows.Err()
}

func idleArgs(b *model.IdleBreakdown) []any {
	if b == nil {
		return []any{nil, nil, nil, nil, nil, nil, nil, nil}
	}
	return []any{
		b.TotalSecs, b.ByEra.Dark, b.ByEra.Feudal, b.ByEra.Castle, b.ByEra.Imperial,
		b.Bands.Short, b.Bands.Medium, b.Bands.Long,
	}
}

func housingArgs(r *model.HousedRange) []any {
	if r == nil {
		return []any{nil, nil, nil, nil, nil, nil, nil, nil, 0}
	}
	mask := 0
	for i, u := range r.Unreliable {
		if u {
			mask |= 1 << i
		}
	}
	return []any{
		r.Lower.Dark, r.Lower.Feudal, r.Lower.Castle, r.Lower.Imperial,
		r.Upper.Dark, r.Upper.Feudal, r.Upper.Castle, r.Upper.Imperial,
		mask,
	}
}

func wallArgs(c *model.EraCounts) []any {
	if c == nil {
		return []any{nil, nil, nil, nil}
	}
	return []any{c.Dark, c.Feudal, c.Castle, c.Imperial}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
