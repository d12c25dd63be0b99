package model

// Era is a named phase of the match, advanced through by each player
// independently via age-up researches.
type Era int

const (
	EraDark Era = iota
	EraFeudal
	EraCastle
	EraImperial
)

// AllEras lists the eras in chronological order.
var AllEras = [4]Era{EraDark, EraFeudal, EraCastle, EraImperial}

func (e Era) String() string {
	switch e {
	case EraDark:
		return "Dark"
	case EraFeudal:
		return "Feudal"
	case EraCastle:
		return "Castle"
	case EraImperial:
		return "Imperial"
	default:
		return "?"
	}
}

// ParseEra maps an era name back to its value. Unknown names map to Dark.
func ParseEra(s string) Era {
	switch s {
	case "Feudal":
		return EraFeudal
	case "Castle":
		return EraCastle
	case "Imperial":
		return EraImperial
	default:
		return EraDark
	}
}

// Category is the command class recorded in the action log.
type Category string

const (
	CategoryBuild    Category = "Build"
	CategoryQueue    Category = "Queue"
	CategoryResearch Category = "Research"
	CategoryMove     Category = "Move"
	CategoryOrder    Category = "Order"
	CategoryTarget   Category = "Target"
	CategoryDelete   Category = "Delete"
	CategoryGarrison Category = "Garrison"
	CategoryWall     Category = "Wall"
)

// Coord is a tile-grid placement position.
type Coord struct {
	X float64
	Y float64
}

// ---- Raw events emitted by the decoder ----

// ActionEvent is one player command from the action log. Events are immutable
// once decoded; the engine only derives sorted/filtered views of them.
type ActionEvent struct {
	Seconds  float64 // seconds from match start
	PlayerID int
	Category Category
	Subject  string // unit, building, or tech name
	Amount   int    // batch size for Queue commands; 0 means 1
	Pos      *Coord
	PosEnd   *Coord // second anchor for Wall commands
}

// Count returns the effective batch size of the command.
func (e ActionEvent) Count() int {
	if e.Amount <= 0 {
		return 1
	}
	return e.Amount
}

// AgeUp marks when a player entered an era.
type AgeUp struct {
	Era     Era
	Seconds float64
}

type PlayerInfo struct {
	ID           int
	Name         string
	Civilization string
	Winner       bool
	ELO          *int
}

// RawMatch is the decoder's output: one complete, finished match.
type RawMatch struct {
	MatchHash    string
	MapName      string
	PlayedAt     string
	GameType     string
	DurationSecs float64
	PopLimit     int
	Completed    bool
	Players      []PlayerInfo
	AgeUps       map[int][]AgeUp // optional precomputed boundaries, keyed by player ID
	Events       []ActionEvent
}

// PlayerName resolves a player ID to its display name.
func (m *RawMatch) PlayerName(id int) string {
	for _, p := range m.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// ---- Aggregated metrics ----

// EraSeconds is a per-era breakdown of accumulated seconds.
type EraSeconds struct {
	Dark     float64
	Feudal   float64
	Castle   float64
	Imperial float64
}

func (s *EraSeconds) Add(e Era, secs float64) {
	switch e {
	case EraDark:
		s.Dark += secs
	case EraFeudal:
		s.Feudal += secs
	case EraCastle:
		s.Castle += secs
	case EraImperial:
		s.Imperial += secs
	}
}

func (s EraSeconds) Get(e Era) float64 {
	switch e {
	case EraDark:
		return s.Dark
	case EraFeudal:
		return s.Feudal
	case EraCastle:
		return s.Castle
	case EraImperial:
		return s.Imperial
	default:
		return 0
	}
}

func (s EraSeconds) Total() float64 {
	return s.Dark + s.Feudal + s.Castle + s.Imperial
}

// EraCounts is a per-era breakdown of integer counts (wall tiles).
type EraCounts struct {
	Dark     int
	Feudal   int
	Castle   int
	Imperial int
}

func (c *EraCounts) Add(e Era, n int) {
	switch e {
	case EraDark:
		c.Dark += n
	case EraFeudal:
		c.Feudal += n
	case EraCastle:
		c.Castle += n
	case EraImperial:
		c.Imperial += n
	}
}

func (c EraCounts) Get(e Era) int {
	switch e {
	case EraDark:
		return c.Dark
	case EraFeudal:
		return c.Feudal
	case EraCastle:
		return c.Castle
	case EraImperial:
		return c.Imperial
	default:
		return 0
	}
}

func (c EraCounts) Total() int {
	return c.Dark + c.Feudal + c.Castle + c.Imperial
}

// GapBands counts production gaps by duration band.
type GapBands struct {
	Short  int
	Medium int
	Long   int
}

// IdleBreakdown is the production-idle result for one queue stream.
type IdleBreakdown struct {
	TotalSecs float64
	ByEra     EraSeconds
	Bands     GapBands
}

// HousedRange is the dual-bound estimate of time blocked at the population
// cap. Lower counts only evidence-backed episodes; Upper comes from the
// capacity/population simulation. Eras where the simulation contradicts the
// evidence (upper < lower) carry an unreliable flag and contribute no lower
// bound.
type HousedRange struct {
	Lower      EraSeconds
	Upper      EraSeconds
	Unreliable [4]bool
}

// NewHousedRange reconciles the two bounds. Whenever an era's upper bound
// falls below its lower bound the lower came from a false-positive trigger:
// it is zeroed and the era flagged, so LowerTotal never exceeds UpperTotal.
func NewHousedRange(lower, upper EraSeconds) HousedRange {
	r := HousedRange{Lower: lower, Upper: upper}
	for _, e := range AllEras {
		if upper.Get(e) < lower.Get(e) {
			r.Unreliable[e] = true
			r.Lower.Add(e, -lower.Get(e))
		}
	}
	return r
}

func (r HousedRange) EraUnreliable(e Era) bool { return r.Unreliable[e] }

func (r HousedRange) LowerTotal() float64 { return r.Lower.Total() }

func (r HousedRange) UpperTotal() float64 { return r.Upper.Total() }

// TCPoint is one step of the running town-center count.
type TCPoint struct {
	Seconds float64
	Count   int
}

// PlayerMetrics is the immutable per-player record produced by the analyzer.
// Pointer fields are nil when the underlying data was insufficient; a nil
// sub-metric never blocks the others.
type PlayerMetrics struct {
	MatchHash    string
	PlayerID     int
	Name         string
	Civilization string
	Winner       bool
	ELO          *int

	AgeUps []AgeUp

	EAPM *float64

	Idle           *IdleBreakdown
	Housing        *HousedRange
	HousedEpisodes int

	Opening string

	WallTiles *EraCounts

	FirstMilitarySecs   *float64
	MilitaryTimingIndex *float64
	FarmGapAvgSecs      *float64

	TCProgression []TCPoint
	TCFinalCount  int
}

// EffectiveIdle is base idle plus the housed range. ok is false when either
// component is unavailable.
func (p *PlayerMetrics) EffectiveIdle() (lower, upper float64, ok bool) {
	if p.Idle == nil || p.Housing == nil {
		return 0, 0, false
	}
	return p.Idle.TotalSecs + p.Housing.LowerTotal(), p.Idle.TotalSecs + p.Housing.UpperTotal(), true
}

// AgeUpSecs returns the player's entry time into the given era, if reached.
func (p *PlayerMetrics) AgeUpSecs(e Era) *float64 {
	for _, a := range p.AgeUps {
		if a.Era == e {
			s := a.Seconds
			return &s
		}
	}
	return nil
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchHash    string
	MapName      string
	PlayedAt     string
	GameType     string
	DurationSecs float64
	PopLimit     int
	Completed    bool
}

// ---- Career aggregates (cross-match queries) ----

// PlayerCareer holds stats for one player aggregated across stored matches.
type PlayerCareer struct {
	Name            string
	Games           int
	Wins            int
	AvgDurationSecs float64
	AvgEAPM         *float64
	AvgIdleSecs     *float64
	AvgIdleByEra    [4]*float64
	AvgHousedLower  *float64
	AvgHousedUpper  *float64
}

func (c *PlayerCareer) WinRate() float64 {
	if c.Games == 0 {
		return 0
	}
	return float64(c.Wins) / float64(c.Games) * 100
}

// GroupRecord is one row of a grouped win-rate query (by civ, map, or opening).
type GroupRecord struct {
	Key   string
	Games int
	Wins  int
}

func (g *GroupRecord) WinRate() float64 {
	if g.Games == 0 {
		return 0
	}
	return float64(g.Wins) / float64(g.Games) * 100
}
