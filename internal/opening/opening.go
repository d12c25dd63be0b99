// Package opening labels a player's early-game strategy from their build
// order and early unit production. Classification is an ordered list of
// predicate rules over extracted features; the first matching rule names
// the opening, and nothing matching is "Unknown".
package opening

import (
	"math"
	"sort"

	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
)

// Labels for the fixed set of opening archetypes.
const (
	LabelTowerRush       = "Tower Rush"
	LabelDrushFC         = "Drush into Fast Castle"
	LabelFastCastle      = "Fast Castle"
	LabelManAtArms       = "Men-at-Arms"
	LabelPreMillDrush    = "Pre-Mill Drush"
	LabelScoutsArchers   = "Scouts into Archers"
	LabelScoutRush       = "Scout Rush"
	LabelArchersSkirms   = "Archers and Skirmishers"
	LabelStraightArchers = "Straight Archers"
	LabelDrush           = "Drush"
	LabelFullFeudal      = "Full Feudal"
	LabelUnknown         = "Unknown"
)

// Features is everything the rules look at, extracted once per player.
type Features struct {
	// Unit counts queued inside the early window.
	Militia        int
	Archers        int
	Skirms         int
	Scouts         int
	Spears         int
	MenAtArms      bool // upgrade researched
	MilitiaPreMill bool // first militia queued before any mill placement

	Towers int // forward towers placed in the early window

	FeudalSecs *float64
	CastleSecs *float64

	// First military production structure placed after the feudal age-up.
	FirstFeudalMilitary string
}

// Config controls feature extraction.
type Config struct {
	// StrictWindow filters unit counts to commands before the Castle age-up
	// (or the configured window when no Castle age-up exists). Off by
	// default: the baseline counts every early-window command, so a single
	// late unit of a defining type can mis-label the opening. Known
	// limitation, kept.
	StrictWindow bool
}

// Rule maps a predicate over features to an opening label.
type Rule struct {
	Label string
	Match func(Features) bool
}

// Rules returns the classification rules in evaluation order. Earlier rules
// are more specific; reordering changes results.
func Rules(bal *gamedata.Balance) []Rule {
	fastCastle := func(f Features) bool {
		if f.CastleSecs == nil || f.FeudalSecs == nil {
			return false
		}
		return *f.CastleSecs-*f.FeudalSecs < bal.FastCastleMaxGapSecs || *f.FeudalSecs > bal.LateFeudalSecs
	}
	return []Rule{
		{LabelTowerRush, func(f Features) bool { return f.Towers >= bal.TowerRushMinTowers }},
		{LabelDrushFC, func(f Features) bool { return f.Militia > 0 && !f.MenAtArms && fastCastle(f) }},
		{LabelFastCastle, func(f Features) bool { return fastCastle(f) }},
		{LabelManAtArms, func(f Features) bool { return f.Militia > 0 && f.MenAtArms }},
		{LabelPreMillDrush, func(f Features) bool { return f.Militia >= bal.PreMillRushMinMilitia && f.MilitiaPreMill }},
		{LabelScoutsArchers, func(f Features) bool { return f.Scouts > 0 && f.Archers > 0 }},
		{LabelScoutRush, func(f Features) bool { return f.Scouts > 0 && f.FirstFeudalMilitary == "Stable" }},
		{LabelArchersSkirms, func(f Features) bool { return f.Archers > 0 && f.Skirms > 0 }},
		{LabelStraightArchers, func(f Features) bool { return f.Archers > 0 && f.FirstFeudalMilitary == "Archery Range" }},
		{LabelDrush, func(f Features) bool { return f.Militia > 0 }},
		{LabelFullFeudal, func(f Features) bool {
			return f.FeudalSecs != nil && f.CastleSecs == nil && f.FirstFeudalMilitary != ""
		}},
	}
}

// Classify runs the ordered rules over the features.
func Classify(f Features, bal *gamedata.Balance) string {
	for _, r := range Rules(bal) {
		if r.Match(f) {
			return r.Label
		}
	}
	return LabelUnknown
}

// ExtractFeatures derives the rule inputs from a player's commands and era
// transitions.
func ExtractFeatures(events []model.ActionEvent, ageUps []model.AgeUp, bal *gamedata.Balance, cfg Config) Features {
	var f Features
	for _, up := range ageUps {
		secs := up.Seconds
		switch up.Era {
		case model.EraFeudal:
			f.FeudalSecs = &secs
		case model.EraCastle:
			f.CastleSecs = &secs
		}
	}

	cutoff := math.Inf(1)
	if cfg.StrictWindow {
		cutoff = bal.OpeningWindowSecs
		if f.CastleSecs != nil {
			cutoff = *f.CastleSecs
		}
	}

	sorted := make([]model.ActionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seconds < sorted[j].Seconds })

	millPlaced := false
	for _, ev := range sorted {
		if ev.Seconds > cutoff {
			break
		}
		switch ev.Category {
		case model.CategoryQueue:
			n := ev.Count()
			switch ev.Subject {
			case "Militia":
				if f.Militia == 0 && !millPlaced {
					f.MilitiaPreMill = true
				}
				f.Militia += n
			case "Archer":
				f.Archers += n
			case "Skirmisher":
				f.Skirms += n
			case "Scout Cavalry":
				f.Scouts += n
			case "Spearman":
				f.Spears += n
			}
		case model.CategoryResearch:
			if ev.Subject == "Man-at-Arms" {
				f.MenAtArms = true
			}
		case model.CategoryBuild:
			switch ev.Subject {
			case "Mill":
				millPlaced = true
			case "Watch Tower", "Outpost":
				f.Towers++
			case "Barracks", "Archery Range", "Stable":
				if f.FirstFeudalMilitary == "" && afterFeudal(f, ev.Seconds) {
					f.FirstFeudalMilitary = ev.Subject
				}
			}
		}
	}
	return f
}

func afterFeudal(f Features, secs float64) bool {
	return f.FeudalSecs != nil && secs >= *f.FeudalSecs
}
