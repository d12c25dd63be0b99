package storage

import (
	"database/sql"
	"fmt"

	"github.com/blzulian/agemetrics/internal/model"
)

// GetPlayerCareer aggregates one player's stored matches. Averages skip
// matches where the underlying metric was unavailable.
func (db *DB) GetPlayerCareer(name string) (*model.PlayerCareer, error) {
	c := model.PlayerCareer{Name: name}
	var avgIdle [4]*float64
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COALESCE(SUM(p.winner), 0), COALESCE(AVG(m.duration_secs), 0),
		       AVG(p.eapm), AVG(p.idle_total),
		       AVG(p.idle_dark), AVG(p.idle_feudal), AVG(p.idle_castle), AVG(p.idle_imperial),
		       AVG(p.housed_lower_dark + p.housed_lower_feudal + p.housed_lower_castle + p.housed_lower_imperial),
		       AVG(p.housed_upper_dark + p.housed_upper_feudal + p.housed_upper_castle + p.housed_upper_imperial)
		FROM match_players p
		JOIN matches m ON m.hash = p.match_hash
		WHERE p.name = ?`, name).
		Scan(&c.Games, &c.Wins, &c.AvgDurationSecs,
			&c.AvgEAPM, &c.AvgIdleSecs,
			&avgIdle[0], &avgIdle[1], &avgIdle[2], &avgIdle[3],
			&c.AvgHousedLower, &c.AvgHousedUpper)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Games == 0 {
		return nil, nil
	}
	c.AvgIdleByEra = avgIdle
	return &c, nil
}

// WinRateByCivilization returns games and wins per civilization for a player.
func (db *DB) WinRateByCivilization(name string) ([]model.GroupRecord, error) {
	return db.groupedWinRate(`
		SELECT p.civilization, COUNT(1), COALESCE(SUM(p.winner), 0)
		FROM match_players p WHERE p.name = ? AND p.civilization != ''
		GROUP BY p.civilization ORDER BY COUNT(1) DESC`, name)
}

// WinRateByMap returns games and wins per map for a player.
func (db *DB) WinRateByMap(name string) ([]model.GroupRecord, error) {
	return db.groupedWinRate(`
		SELECT m.map_name, COUNT(1), COALESCE(SUM(p.winner), 0)
		FROM match_players p
		JOIN matches m ON m.hash = p.match_hash
		WHERE p.name = ?
		GROUP BY m.map_name ORDER BY COUNT(1) DESC`, name)
}

// WinRateByOpening returns games and wins per opening label for a player.
func (db *DB) WinRateByOpening(name string) ([]model.GroupRecord, error) {
	return db.groupedWinRate(`
		SELECT p.opening, COUNT(1), COALESCE(SUM(p.winner), 0)
		FROM match_players p WHERE p.name = ?
		GROUP BY p.opening ORDER BY COUNT(1) DESC`, name)
}

func (db *DB) groupedWinRate(query, name string) ([]model.GroupRecord, error) {
	rows, err := db.conn.Query(query, name)
	if err != nil {
		return nil, fmt.Errorf("grouped win rate: %w", err)
	}
	defer rows.Close()

	var out []model.GroupRecord
	for rows.Next() {
		var g model.GroupRecord
		if err := rows.Scan(&g.Key, &g.Games, &g.Wins); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
