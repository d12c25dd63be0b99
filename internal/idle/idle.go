// Package idle measures production downtime from queue commands. The walk
// keeps a running "facility free at" time: each queue command pushes it
// forward by the train duration, and a command arriving well after the
// facilities went quiet marks an idle gap.
package idle

import (
	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
)

// FacilityCounter reports how many production facilities a player has at a
// point in time. Concurrent facilities split queued work.
type FacilityCounter interface {
	FacilitiesAt(secs float64) int
}

// ConstantFacilities is a fixed facility count for the whole match.
type ConstantFacilities int

func (c ConstantFacilities) FacilitiesAt(float64) int {
	if c < 1 {
		return 1
	}
	return int(c)
}

// Progression counts facilities from a sorted list of count changes, such as
// a town-center build history.
type Progression []model.TCPoint

func (p Progression) FacilitiesAt(secs float64) int {
	n := 1
	for _, pt := range p {
		if pt.Seconds > secs {
			break
		}
		if pt.Count > 0 {
			n = pt.Count
		}
	}
	return n
}

// Compute walks a player's queue commands and returns the idle breakdown:
// total idle seconds, idle attributed to the era each gap started in, and
// gap counts by duration band. Fewer than two commands is not enough signal
// and yields nil.
func Compute(queued []model.ActionEvent, bal *gamedata.Balance, facilities FacilityCounter, ageUps []model.AgeUp) *model.IdleBreakdown {
	if len(queued) < 2 {
		return nil
	}
	if facilities == nil {
		facilities = ConstantFacilities(1)
	}

	var out model.IdleBreakdown
	freeAt := 0.0
	first := true
	for _, ev := range queued {
		dur, ok := bal.TrainTime(ev.Subject)
		if !ok {
			continue
		}
		if first {
			freeAt = ev.Seconds
			first = false
		} else if gap := ev.Seconds - freeAt; gap > bal.IdleGapThresholdSecs {
			out.TotalSecs += gap
			out.ByEra.Add(eraAt(ageUps, freeAt), gap)
			switch {
			case gap < bal.GapBandEdgesSecs[0]:
				out.Bands.Short++
			case gap < bal.GapBandEdgesSecs[1]:
				out.Bands.Medium++
			default:
				out.Bands.Long++
			}
		}
		start := ev.Seconds
		if freeAt > start {
			start = freeAt
		}
		n := facilities.FacilitiesAt(ev.Seconds)
		if n < 1 {
			n = 1
		}
		freeAt = start + dur*float64(ev.Count())/float64(n)
	}
	if first {
		// No command carried a known train time.
		return nil
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
