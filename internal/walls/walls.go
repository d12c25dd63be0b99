// Package walls counts the tiles covered by linear placement commands.
package walls

import (
	"math"

	"github.com/blzulian/agemetrics/internal/model"
)

// TileCount returns the grid tiles spanned by one straight placement,
// endpoints inclusive. A placement without an end coordinate is one tile.
func TileCount(ev model.ActionEvent) int {
	if ev.Pos == nil || ev.PosEnd == nil {
		return 1
	}
	dx := math.Abs(ev.PosEnd.X - ev.Pos.X)
	dy := math.Abs(ev.PosEnd.Y - ev.Pos.Y)
	return int(math.Max(dx, dy)) + 1
}

// CountByEra sums wall tiles per era, attributing each command to the era of
// its timestamp. Overlapping segments are counted independently; the log
// does not say which tiles were actually placed.
func CountByEra(events []model.ActionEvent, ageUps []model.AgeUp) *model.EraCounts {
	if len(events) == 0 {
		return nil
	}
	var out model.EraCounts
	for _, ev := range events {
		out.Add(eraAt(ageUps, ev.Seconds), TileCount(ev))
	}
	return &out
}

func eraAt(ups []model.AgeUp, secs float64) model.Era {
	era := model.EraDark
	for _, up := range ups {
		if up.Seconds > secs {
			break
		}
		era = up.Era
	}
	return era
}
