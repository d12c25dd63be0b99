// Package housing estimates time a player could not produce units because
// population hit capacity, a state the action log never records directly.
// Two independent estimates bracket the truth: a conservative lower bound
// that only counts episodes with direct behavioral evidence, and a liberal
// upper bound from a per-second capacity-versus-population simulation.
package housing

import (
	"math"
	"sort"

	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
)

// Estimate returns the housed-time range for one player plus the count of
// evidence-backed housed episodes. All of the player's commands go in, in
// timeline order. Missing capacity or population signal yields a nil range.
func Estimate(events []model.ActionEvent, bal *gamedata.Balance, ageUps []model.AgeUp, durationSecs float64) (*model.HousedRange, int) {
	if durationSecs <= 0 {
		return nil, 0
	}

	var queued, builds, deletes []model.ActionEvent
	lastAction := 0.0
	for _, ev := range events {
		if ev.Seconds > lastAction {
			lastAction = ev.Seconds
		}
		switch ev.Category {
		case model.CategoryQueue:
			if _, ok := bal.TrainTime(ev.Subject); ok {
				queued = append(queued, ev)
			}
		case model.CategoryBuild:
			builds = append(builds, ev)
		case model.CategoryDelete:
			deletes = append(deletes, ev)
		}
	}
	hasCapacity := false
	for _, ev := range builds {
		if bal.CapacityGrant(ev.Subject) > 0 {
			hasCapacity = true
			break
		}
	}
	if len(queued) == 0 || !hasCapacity {
		return nil, 0
	}

	lower, episodes := lowerBound(queued, builds, bal, ageUps)
	upper := upperBound(queued, builds, deletes, bal, ageUps, durationSecs, lastAction)
	r := model.NewHousedRange(lower, upper)
	return &r, episodes
}

// lowerBound counts only queue gaps during which the player placed two or
// more capacity structures, the classic "stuck, spam houses" reaction.
func lowerBound(queued, builds []model.ActionEvent, bal *gamedata.Balance, ageUps []model.AgeUp) (model.EraSeconds, int) {
	var out model.EraSeconds
	episodes := 0
	freeAt := queued[0].Seconds
	for _, ev := range queued {
		dur, _ := bal.TrainTime(ev.Subject)
		if gap := ev.Seconds - freeAt; gap > bal.IdleGapThresholdSecs {
			if capacityPlacements(builds, bal, freeAt, ev.Seconds+bal.HousingEvidenceWindowSecs) >= 2 {
				blocked := gap - dur
				if blocked < 0 {
					blocked = 0
				}
				mid := (freeAt + ev.Seconds) / 2
				out.Add(eraAt(ageUps, mid), blocked)
				episodes++
			}
		}
		start := ev.Seconds
		if freeAt > start {
			start = freeAt
		}
		freeAt = start + dur*float64(ev.Count())
	}
	return out, episodes
}

func capacityPlacements(builds []model.ActionEvent, bal *gamedata.Balance, from, to float64) int {
	n := 0
	for _, ev := range builds {
		if ev.Seconds >= from && ev.Seconds <= to && bal.CapacityGrant(ev.Subject) > 0 {
			n++
		}
	}
	return n
}

type delta struct {
	secs  float64
	value int
}

// upperBound simulates capacity against living population for every second
// of the match. Deaths are exact for explicit delete commands; a player
// silent for longer than the abandonment threshold before match end has the
// whole population presumed wiped shortly after their last command.
func upperBound(queued, builds, deletes []model.ActionEvent, bal *gamedata.Balance, ageUps []model.AgeUp, durationSecs, lastAction float64) model.EraSeconds {
	capDeltas := []delta{{0, bal.BaseCapacity}}
	for _, ev := range builds {
		grant := bal.CapacityGrant(ev.Subject)
		if grant == 0 {
			continue
		}
		buildDur, _ := bal.BuildTime(ev.Subject)
		capDeltas = append(capDeltas, delta{ev.Seconds + buildDur, grant})
	}

	var popDeltas []delta
	for _, ev := range queued {
		dur, _ := bal.TrainTime(ev.Subject)
		popDeltas = append(popDeltas, delta{ev.Seconds + dur, ev.Count()})
	}
	for _, ev := range deletes {
		popDeltas = append(popDeltas, delta{ev.Seconds, -1})
	}

	end := durationSecs
	wipedAt := math.Inf(1)
	if lastAction+bal.AbandonThresholdSecs < durationSecs {
		wipedAt = lastAction + bal.DeathOffsetSecs
	}

	sort.SliceStable(capDeltas, func(i, j int) bool { return capDeltas[i].secs < capDeltas[j].secs })
	sort.SliceStable(popDeltas, func(i, j int) bool { return popDeltas[i].secs < popDeltas[j].secs })

	var out model.EraSeconds
	capNow, popNow := 0, 0
	ci, pi := 0, 0
	for sec := 0.0; sec <= end; sec++ {
		if sec >= wipedAt {
			break
		}
		for ci < len(capDeltas) && capDeltas[ci].secs <= sec {
			capNow += capDeltas[ci].value
			ci++
		}
		for pi < len(popDeltas) && popDeltas[pi].secs <= sec {
			popNow += popDeltas[pi].value
			pi++
		}
		if popNow < 0 {
			popNow = 0
		}
		if capNow > 0 && popNow >= capNow {
			out.Add(eraAt(ageUps, sec), 1)
		}
	}
	return out
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
