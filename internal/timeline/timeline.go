// Package timeline turns the raw command stream of a match into the ordered,
// indexed form the metric passes consume: a stable global ordering plus
// per-player per-category buckets and the era boundaries for each player.
package timeline

import (
	"sort"

	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
)

// Timeline is an indexed view over one match's commands.
type Timeline struct {
	events  []model.ActionEvent
	byCat   map[int]map[model.Category][]model.ActionEvent
	players []int
	ageUps  map[int][]model.AgeUp
}

// Normalize orders the raw events by timestamp, preserving input order for
// ties, and builds the per-player indexes. Age-up times from the match header
// take precedence; players without header age-ups get them derived from their
// era-advance research commands.
func Normalize(raw *model.RawMatch, bal *gamedata.Balance) *Timeline {
	tl := &Timeline{
		events: make([]model.ActionEvent, len(raw.Events)),
		byCat:  make(map[int]map[model.Category][]model.ActionEvent),
		ageUps: make(map[int][]model.AgeUp),
	}
	copy(tl.events, raw.Events)
	sort.SliceStable(tl.events, func(i, j int) bool {
		return tl.events[i].Seconds < tl.events[j].Seconds
	})

	for _, ev := range tl.events {
		cats, ok := tl.byCat[ev.PlayerID]
		if !ok {
			cats = make(map[model.Category][]model.ActionEvent)
			tl.byCat[ev.PlayerID] = cats
			tl.players = append(tl.players, ev.PlayerID)
		}
		cats[ev.Category] = append(cats[ev.Category], ev)
	}
	sort.Ints(tl.players)

	for _, id := range tl.players {
		if ups, ok := raw.AgeUps[id]; ok && len(ups) > 0 {
			tl.ageUps[id] = sortedAgeUps(ups)
			continue
		}
		tl.ageUps[id] = ageUpsFromResearch(tl.byCat[id][model.CategoryResearch], bal)
	}
	for id, ups := range raw.AgeUps {
		if _, seen := tl.byCat[id]; !seen && len(ups) > 0 {
			tl.players = append(tl.players, id)
			tl.ageUps[id] = sortedAgeUps(ups)
		}
	}
	sort.Ints(tl.players)
	return tl
}

// Players returns the player IDs present in the match, ascending.
func (t *Timeline) Players() []int { return t.players }

// All returns the full ordered command stream.
func (t *Timeline) All() []model.ActionEvent { return t.events }

// Events returns one player's commands of one category, in timeline order.
func (t *Timeline) Events(player int, cat model.Category) []model.ActionEvent {
	return t.byCat[player][cat]
}

// PlayerEvents returns all of one player's commands, in timeline order.
func (t *Timeline) PlayerEvents(player int) []model.ActionEvent {
	var out []model.ActionEvent
	for _, ev := range t.events {
		if ev.PlayerID == player {
			out = append(out, ev)
		}
	}
	return out
}

// AgeUps returns a player's era transitions, ascending by time.
func (t *Timeline) AgeUps(player int) []model.AgeUp { return t.ageUps[player] }

// EraOf returns the era a player was in at the given time. Times before the
// first transition are the starting era.
func (t *Timeline) EraOf(player int, secs float64) model.Era {
	return EraAt(t.ageUps[player], secs)
}

// FirstAgeUp returns when a player entered the given era, nil if never.
func FirstAgeUp(ups []model.AgeUp, era model.Era) *float64 {
	for _, up := range ups {
		if up.Era == era {
			secs := up.Seconds
			return &secs
		}
	}
	return nil
}

// EraAt resolves the era at a point in time against a sorted transition list.
func EraAt(ups []model.AgeUp, secs float64) model.Era {
	era := model.EraDark
	for _, up := range ups {
		if up.Seconds > secs {
			break
		}
		era = up.Era
	}
	return era
}

func sortedAgeUps(ups []model.AgeUp) []model.AgeUp {
	out := make([]model.AgeUp, len(ups))
	copy(out, ups)
	sort.Slice(out, func(i, j int) bool { return out[i].Seconds < out[j].Seconds })
	return out
}

func ageUpsFromResearch(research []model.ActionEvent, bal *gamedata.Balance) []model.AgeUp {
	var ups []model.AgeUp
	for _, ev := range research {
		name, ok := bal.EraForTech(ev.Subject)
		if !ok {
			continue
		}
		era := model.ParseEra(name)
		if era == model.EraDark {
			continue
		}
		ups = append(ups, model.AgeUp{Era: era, Seconds: ev.Seconds})
	}
	return ups
}
