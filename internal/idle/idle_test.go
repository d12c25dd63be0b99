package idle

import (
	"math"
	"testing"

	"github.com/blzulian/agemetrics/internal/gamedata"
	"github.com/blzulian/agemetrics/internal/model"
)

func testBalance() *gamedata.Balance {
	b := gamedata.Default()
	b.IdleGapThresholdSecs = 5
	return b
}

func queue(times ...float64) []model.ActionEvent {
	evs := make([]model.ActionEvent, len(times))
	for i, t := range times {
		evs[i] = model.ActionEvent{Seconds: t, PlayerID: 1, Category: model.CategoryQueue, Subject: "Villager"}
	}
	return evs
}

func TestComputeBacklogAbsorbsSmallGaps(t *testing.T) {
	// Villager trains in 25s. The walk runs free-at 25 -> 55 -> 80; the
	// command at t=30 lands inside the backlog grace and only t=200 opens
	// a real gap of 120s.
	ups := []model.AgeUp{{Era: model.EraFeudal, Seconds: 600}}
	got := Compute(queue(0, 30, 55, 200), testBalance(), ConstantFacilities(1), ups)
	if got == nil {
		t.Fatal("Compute returned nil")
	}
	if got.TotalSecs != 120 {
		t.Errorf("TotalSecs = %v, want 120", got.TotalSecs)
	}
	// The gap opened at t=80, still in the starting era.
	if got.ByEra.Dark != 120 || got.ByEra.Feudal != 0 {
		t.Errorf("ByEra = %+v, want all 120 in dark", got.ByEra)
	}
	if got.Bands != (model.GapBands{Medium: 1}) {
		t.Errorf("Bands = %+v, want one medium gap", got.Bands)
	}
}

func TestComputePerEraSumsEqualTotal(t *testing.T) {
	ups := []model.AgeUp{
		{Era: model.EraFeudal, Seconds: 300},
		{Era: model.EraCastle, Seconds: 900},
	}
	got := Compute(queue(0, 100, 400, 950, 1300), testBalance(), ConstantFacilities(1), ups)
	if got == nil {
		t.Fatal("Compute returned nil")
	}
	if math.Abs(got.ByEra.Total()-got.TotalSecs) > 1e-9 {
		t.Errorf("per-era sum %v != total %v", got.ByEra.Total(), got.TotalSecs)
	}
	if got.ByEra.Feudal == 0 || got.ByEra.Castle == 0 {
		t.Errorf("expected idle in feudal and castle, got %+v", got.ByEra)
	}
}

func TestComputeMoreFacilitiesMeansNoLessIdle(t *testing.T) {
	// Splitting the same queue across more facilities drains backlog faster,
	// so measured idle can only stay equal or grow.
	times := queue(0, 20, 40, 60, 150, 160, 400)
	one := Compute(times, testBalance(), ConstantFacilities(1), nil)
	three := Compute(times, testBalance(), ConstantFacilities(3), nil)
	if one == nil || three == nil {
		t.Fatal("Compute returned nil")
	}
	if three.TotalSecs < one.TotalSecs {
		t.Errorf("idle with 3 facilities (%v) < with 1 (%v)", three.TotalSecs, one.TotalSecs)
	}
}

func TestComputeAppendNeverDecreasesIdle(t *testing.T) {
	base := queue(0, 40, 120, 300)
	prev := Compute(base, testBalance(), ConstantFacilities(1), nil)
	if prev == nil {
		t.Fatal("Compute returned nil")
	}
	// Appending commands strictly after the last one can only add idle.
	for _, next := range []float64{310, 400, 1000} {
		got := Compute(append(queue(0, 40, 120, 300), queue(next)...), testBalance(), ConstantFacilities(1), nil)
		if got == nil {
			t.Fatal("Compute returned nil")
		}
		if got.TotalSecs < prev.TotalSecs {
			t.Errorf("appending command at %v dropped idle from %v to %v", next, prev.TotalSecs, got.TotalSecs)
		}
	}
}

func TestComputeBatchedCommandCounts(t *testing.T) {
	evs := []model.ActionEvent{
		{Seconds: 0, Category: model.CategoryQueue, Subject: "Villager", Amount: 4},
		{Seconds: 250, Category: model.CategoryQueue, Subject: "Villager"},
	}
	// Four villagers back to back hold the facility until t=100.
	got := Compute(evs, testBalance(), ConstantFacilities(1), nil)
	if got == nil {
		t.Fatal("Compute returned nil")
	}
	if got.TotalSecs != 150 {
		t.Errorf("TotalSecs = %v, want 150", got.TotalSecs)
	}
}

func TestComputeInsufficientSignal(t *testing.T) {
	if got := Compute(queue(10), testBalance(), nil, nil); got != nil {
		t.Errorf("single command should yield nil, got %+v", got)
	}
	if got := Compute(nil, testBalance(), nil, nil); got != nil {
		t.Errorf("no commands should yield nil, got %+v", got)
	}
	// Subjects without train times carry no signal either.
	evs := []model.ActionEvent{
		{Seconds: 0, Category: model.CategoryQueue, Subject: "Unicorn"},
		{Seconds: 99, Category: model.CategoryQueue, Subject: "Unicorn"},
	}
	if got := Compute(evs, testBalance(), nil, nil); got != nil {
		t.Errorf("unknown subjects should yield nil, got %+v", got)
	}
}

func TestProgressionCounter(t *testing.T) {
	p := Progression{{Seconds: 0, Count: 1}, {Seconds: 800, Count: 2}, {Seconds: 1500, Count: 3}}
	for _, tc := range []struct {
		secs float64
		want int
	}{{0, 1}, {799, 1}, {800, 2}, {1499, 2}, {1500, 3}} {
		if got := p.FacilitiesAt(tc.secs); got != tc.want {
			t.Errorf("FacilitiesAt(%v) = %d, want %d", tc.secs, got, tc.want)
		}
	}
}
