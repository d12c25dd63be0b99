// Package gamedata holds the game-balance constants the engine reasons with:
// unit train durations, structure build durations, and population-capacity
// grants. The table ships as an embedded default and can be replaced with a
// YAML file so the engine survives balance patches without a rebuild.
package gamedata

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed balance.yaml
var defaultBalanceYAML []byte

// Balance is the full constants table for one game-balance revision.
type Balance struct {
	// Seconds to train one unit, by unit name.
	TrainTimes map[string]float64 `yaml:"train_times"`
	// Seconds to construct a structure, by structure name.
	BuildTimes map[string]float64 `yaml:"build_times"`
	// Population capacity granted on completion, by structure name.
	CapacityGrants map[string]int `yaml:"capacity_grants"`
	// Capacity available at match start (the initial town center).
	BaseCapacity int `yaml:"base_capacity"`
	// Units that do not count as military for timing metrics.
	EconomicUnits []string `yaml:"economic_units"`
	// Research subjects that advance the era, by era name.
	AgeTechs map[string]string `yaml:"age_techs"`

	// Production gaps at or under this are normal queuing latency, not idle.
	IdleGapThresholdSecs float64 `yaml:"idle_gap_threshold_secs"`
	// Band edges for gap classification: short < edge0 <= medium < edge1 <= long.
	GapBandEdgesSecs [2]float64 `yaml:"gap_band_edges_secs"`
	// Farm build gaps above this are pauses or transitions, not refresh cadence.
	FarmGapMaxSecs float64 `yaml:"farm_gap_max_secs"`

	// Window after a queue gap in which house placements count as evidence
	// of being housed.
	HousingEvidenceWindowSecs float64 `yaml:"housing_evidence_window_secs"`
	// A player silent for this long before match end is presumed wiped out.
	AbandonThresholdSecs float64 `yaml:"abandon_threshold_secs"`
	// Presumed-lost units die this long after the player's last action.
	DeathOffsetSecs float64 `yaml:"death_offset_secs"`

	// Early-game window for opening classification when no Castle age-up
	// bounds it.
	OpeningWindowSecs float64 `yaml:"opening_window_secs"`
	// A Feudal-to-Castle transition under this counts as a fast advance.
	FastCastleMaxGapSecs float64 `yaml:"fast_castle_max_gap_secs"`
	// A Feudal age-up later than this implies the player skipped Feudal play.
	LateFeudalSecs float64 `yaml:"late_feudal_secs"`
	// Early towers needed to call a tower rush.
	TowerRushMinTowers int `yaml:"tower_rush_min_towers"`
	// Militia needed for the pre-mill rush label.
	PreMillRushMinMilitia int `yaml:"pre_mill_rush_min_militia"`

	economic map[string]struct{}
}

// Default returns the embedded balance table.
func Default() *Balance {
	b, err := parse(defaultBalanceYAML)
	if err != nil {
		// The embedded table is part of the build; failing to parse it is a bug.
		panic(fmt.Sprintf("gamedata: embedded balance.yaml invalid: %v", err))
	}
	return b
}

// Load reads a balance table from a YAML file. Values present in the file
// override the embedded defaults; absent keys keep them.
func Load(path string) (*Balance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read balance table: %w", err)
	}
	b := Default()
	if err := yaml.Unmarshal(raw, b); err != nil {
		return nil, fmt.Errorf("parse balance table %s: %w", path, err)
	}
	b.index()
	return b, nil
}

func parse(raw []byte) (*Balance, error) {
	var b Balance
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	b.index()
	return &b, nil
}

func (b *Balance) index() {
	b.economic = make(map[string]struct{}, len(b.EconomicUnits))
	for _, u := range b.EconomicUnits {
		b.economic[u] = struct{}{}
	}
}

// TrainTime returns the train duration for a unit, reporting whether the
// unit is known to the table.
func (b *Balance) TrainTime(unit string) (float64, bool) {
	t, ok := b.TrainTimes[unit]
	return t, ok
}

// BuildTime returns the construction duration for a structure; unknown
// structures report 0, false.
func (b *Balance) BuildTime(structure string) (float64, bool) {
	t, ok := b.BuildTimes[structure]
	return t, ok
}

// CapacityGrant returns the population capacity a structure adds on
// completion, 0 for non-capacity structures.
func (b *Balance) CapacityGrant(structure string) int {
	return b.CapacityGrants[structure]
}

// IsEconomic reports whether a unit is non-military.
func (b *Balance) IsEconomic(unit string) bool {
	_, ok := b.economic[unit]
	return ok
}

// EraForTech maps a research subject to the era it advances into, if any.
func (b *Balance) EraForTech(tech string) (string, bool) {
	for era, t := range b.AgeTechs {
		if t == tech {
			return era, true
		}
	}
	return "", false
}
