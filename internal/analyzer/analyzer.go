// Package analyzer composes the per-player metric passes into one immutable
// record per player. Each sub-metric computes independently; a metric that
// cannot be derived from the log is nil in the record and never blocks the
// rest.
package analyzer

import (
	"errors"

	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/housing"
	"github.com/blzulian/agemetrics/internal/idle"
	"github.com/blzulian/agemetrics/internal/model"
	"github.com/blzulian/agemetrics/internal/opening"
	"github.com/blzulian/agemetrics/internal/timeline"
	"github.com/blzulian/agemetrics/internal/walls"
)

// Options tweaks analysis behavior.
type Options struct {
	// StrictOpeningWindow cuts opening-classifier unit counts at the Castle
	// age-up instead of counting the whole log.
	StrictOpeningWindow bool
}

// Analyze runs every metric pass for every player of one match.
func Analyze(raw *model.RawMatch, bal *gamedata.Balance, opts Options) ([]model.PlayerMetrics, error) {
	if raw == nil {
		return nil, errors.New("analyze: no match data")
	}
	if bal == nil {
		bal = gamedata.Default()
	}

	tl := timeline.Normalize(raw, bal)
	var out []model.PlayerMetrics
	for _, id := range tl.Players() {
		out = append(out, analyzePlayer(raw, tl, bal, opts, id))
	}
	return out, nil
}

func analyzePlayer(raw *model.RawMatch, tl *timeline.Timeline, bal *gamedata.Balance, opts Options, id int) model.PlayerMetrics {
	ageUps := tl.AgeUps(id)
	events := tl.PlayerEvents(id)

	m := model.PlayerMetrics{
		MatchHash: raw.MatchHash,
		PlayerID:  id,
		Name:      raw.PlayerName(id),
		AgeUps:    ageUps,
	}
	for _, p := range raw.Players {
		if p.ID == id {
			m.Civilization = p.Civilization
			m.Winner = p.Winner
			m.ELO = p.ELO
			break
		}
	}

	m.TCProgression, m.TCFinalCount = tcProgression(tl.Events(id, model.CategoryBuild), bal)
	m.EAPM = effectiveAPM(events, raw.DurationSecs)

	m.Idle = idle.Compute(economicQueue(tl.Events(id, model.CategoryQueue), bal), bal,
		idle.Progression(m.TCProgression), ageUps)
	m.Housing, m.HousedEpisodes = housing.Estimate(events, bal, ageUps, raw.DurationSecs)

	m.Opening = opening.Classify(
		opening.ExtractFeatures(events, ageUps, bal, opening.Config{StrictWindow: opts.StrictOpeningWindow}), bal)

	m.WallTiles = walls.CountByEra(tl.Events(id, model.CategoryWall), ageUps)

	m.FirstMilitarySecs = firstMilitary(tl.Events(id, model.CategoryQueue), bal)
	if castle := timeline.FirstAgeUp(ageUps, model.EraCastle); castle != nil && m.FirstMilitarySecs != nil && *castle > 0 {
		idx := *m.FirstMilitarySecs / *castle
		m.MilitaryTimingIndex = &idx
	}
	m.FarmGapAvgSecs = farmGapAverage(tl.Events(id, model.CategoryBuild), ageUps, bal)

	return m
}

// effectiveAPM is commands per minute excluding pure movement spam.
func effectiveAPM(events []model.ActionEvent, durationSecs float64) *float64 {
	if durationSecs <= 0 {
		return nil
	}
	n := 0
	for _, ev := range events {
		if ev.Category != model.CategoryMove {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	apm := float64(n) / (durationSecs / 60)
	return &apm
}

// tcProgression tracks the running town-center count, seeded with the
// starting center, stepping up at each additional center's completion.
func tcProgression(builds []model.ActionEvent, bal *gamedata.Balance) ([]model.TCPoint, int) {
	points := []model.TCPoint{{Seconds: 0, Count: 1}}
	count := 1
	for _, ev := range builds {
		if ev.Subject != "Town Center" {
			continue
		}
		dur, _ := bal.BuildTime(ev.Subject)
		count++
		points = append(points, model.TCPoint{Seconds: ev.Seconds + dur, Count: count})
	}
	return points, count
}

func economicQueue(queued []model.ActionEvent, bal *gamedata.Balance) []model.ActionEvent {
	var out []model.ActionEvent
	for _, ev := range queued {
		if bal.IsEconomic(ev.Subject) {
			out = append(out, ev)
		}
	}
	return out
}

func firstMilitary(queued []model.ActionEvent, bal *gamedata.Balance) *float64 {
	for _, ev := range queued {
		if _, known := bal.TrainTime(ev.Subject); !known || bal.IsEconomic(ev.Subject) {
			continue
		}
		secs := ev.Seconds
		return &secs
	}
	return nil
}

// farmGapAverage measures farm refresh cadence: the mean gap between
// consecutive farm placements after the Castle age-up, ignoring gaps long
// enough to be pauses rather than cadence.
func farmGapAverage(builds []model.ActionEvent, ageUps []model.AgeUp, bal *gamedata.Balance) *float64 {
	castle := timeline.FirstAgeUp(ageUps, model.EraCastle)
	if castle == nil {
		return nil
	}
	var prev *float64
	total, n := 0.0, 0
	for _, ev := range builds {
		if ev.Subject != "Farm" || ev.Seconds < *castle {
			continue
		}
		if prev != nil {
			if gap := ev.Seconds - *prev; gap <= bal.FarmGapMaxSecs {
				total += gap
				n++
			}
		}
		secs := ev.Seconds
		prev = &secs
	}
	if n == 0 {
		return nil
	}
	avg := total / float64(n)
	return &avg
}
