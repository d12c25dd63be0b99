package storage

import (
	"testing"

	"github.com/blzulian/agemetrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func f64(v float64) *float64 { return &v }

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)

	summary := model.MatchSummary{
		MatchHash:    "abc123",
		MapName:      "Arabia",
		PlayedAt:     "2025-11-02T19:30:00Z",
		GameType:     "1v1",
		DurationSecs: 2400,
		PopLimit:     200,
		Completed:    true,
	}

	if err := db.InsertMatch(summary); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	exists, err := db.MatchExists("abc123")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}

	exists2, _ := db.MatchExists("nonexistent")
	if exists2 {
		t.Error("expected non-existent match to not exist")
	}
}

func TestListMatches(t *testing.T) {
	db := openMemDB(t)

	summaries := []model.MatchSummary{
		{MatchHash: "h1", MapName: "Arabia", PlayedAt: "2025-01-01", DurationSecs: 1800},
		{MatchHash: "h2", MapName: "Arena", PlayedAt: "2025-02-01", DurationSecs: 2600},
	}
	for _, s := range summaries {
		if err := db.InsertMatch(s); err != nil {
			t.Fatalf("InsertMatch: %v", err)
		}
	}

	list, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 matches, got %d", len(list))
	}
	// Ordered by played_at DESC — h2 should be first.
	if list[0].MatchHash != "h2" {
		t.Errorf("expected h2 first (newest), got %s", list[0].MatchHash)
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)

	db.InsertMatch(model.MatchSummary{MatchHash: "deadbeef1234", MapName: "Black Forest", PlayedAt: "2025-01-01", DurationSecs: 3600})

	s, err := db.GetMatchByPrefix("deadb")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if s == nil {
		t.Fatal("expected match for prefix 'deadb'")
	}
	if s.MatchHash != "deadbeef1234" {
		t.Errorf("unexpected hash %s", s.MatchHash)
	}

	s2, err := db.GetMatchByPrefix("ffffffff")
	if err != nil {
		t.Fatalf("GetMatchByPrefix no-match: %v", err)
	}
	if s2 != nil {
		t.Error("expected nil for unknown prefix")
	}
}

func TestPlayerMetricsRoundTrip(t *testing.T) {
	db := openMemDB(t)

	db.InsertMatch(model.MatchSummary{MatchHash: "h1", MapName: "Arabia", PlayedAt: "2025-01-01", DurationSecs: 2400})

	elo := 1450
	metrics := []model.PlayerMetrics{
		{
			MatchHash: "h1", PlayerID: 1, Name: "alice", Civilization: "Franks", Winner: true, ELO: &elo,
			AgeUps: []model.AgeUp{
				{Era: model.EraFeudal, Seconds: 610},
				{Era: model.EraCastle, Seconds: 1105},
			},
			EAPM: f64(42.5),
			Idle: &model.IdleBreakdown{
				TotalSecs: 210,
				ByEra:     model.EraSeconds{Dark: 60, Feudal: 150},
				Bands:     model.GapBands{Short: 1, Medium: 2},
			},
			Housing: &model.HousedRange{
				Lower:      model.EraSeconds{Feudal: 30},
				Upper:      model.EraSeconds{Feudal: 90, Castle: 120},
				Unreliable: [4]bool{false, false, true, false},
			},
			HousedEpisodes:      1,
			Opening:             "Scout Rush",
			WallTiles:           &model.EraCounts{Feudal: 48},
			FirstMilitarySecs:   f64(655),
			MilitaryTimingIndex: f64(0.59),
			FarmGapAvgSecs:      f64(34.5),
			TCProgression:       []model.TCPoint{{Seconds: 0, Count: 1}, {Seconds: 1350, Count: 2}},
			TCFinalCount:        2,
		},
		{
			// Sparse log: most metrics unavailable.
			MatchHash: "h1", PlayerID: 2, Name: "bob", Civilization: "Britons",
			Opening:       "Unknown",
			TCProgression: []model.TCPoint{{Seconds: 0, Count: 1}},
			TCFinalCount:  1,
		},
	}

	if err := db.InsertPlayerMetrics(metrics); err != nil {
		t.Fatalf("InsertPlayerMetrics: %v", err)
	}

	got, err := db.GetPlayerMetrics("h1")
	if err != nil {
		t.Fatalf("GetPlayerMetrics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 player rows, got %d", len(got))
	}

	alice := got[0]
	if alice.Name != "alice" || !alice.Winner || alice.ELO == nil || *alice.ELO != 1450 {
		t.Errorf("alice identity mismatch: %+v", alice)
	}
	if alice.Idle == nil || alice.Idle.TotalSecs != 210 || alice.Idle.ByEra.Feudal != 150 {
		t.Errorf("alice idle mismatch: %+v", alice.Idle)
	}
	if alice.Idle.Bands.Medium != 2 {
		t.Errorf("alice gap bands mismatch: %+v", alice.Idle.Bands)
	}
	if alice.Housing == nil || alice.Housing.Upper.Castle != 120 {
		t.Errorf("alice housing mismatch: %+v", alice.Housing)
	}
	if !alice.Housing.EraUnreliable(model.EraCastle) || alice.Housing.EraUnreliable(model.EraFeudal) {
		t.Errorf("alice reliability flags mismatch: %+v", alice.Housing.Unreliable)
	}
	if alice.WallTiles == nil || alice.WallTiles.Feudal != 48 {
		t.Errorf("alice wall tiles mismatch: %+v", alice.WallTiles)
	}
	if len(alice.AgeUps) != 2 || alice.AgeUps[1].Era != model.EraCastle {
		t.Errorf("alice age-ups mismatch: %+v", alice.AgeUps)
	}
	if len(alice.TCProgression) != 2 || alice.TCProgression[1].Count != 2 {
		t.Errorf("alice tc progression mismatch: %+v", alice.TCProgression)
	}
	if alice.FarmGapAvgSecs == nil || *alice.FarmGapAvgSecs != 34.5 {
		t.Errorf("alice farm gap mismatch: %v", alice.FarmGapAvgSecs)
	}

	bob := got[1]
	if bob.Idle != nil || bob.Housing != nil || bob.WallTiles != nil {
		t.Errorf("bob unavailable metrics came back non-nil: %+v", bob)
	}
	if bob.EAPM != nil || bob.ELO != nil || bob.FirstMilitarySecs != nil {
		t.Errorf("bob scalar nils came back non-nil: %+v", bob)
	}
	if bob.Opening != "Unknown" || bob.TCFinalCount != 1 {
		t.Errorf("bob basics mismatch: %+v", bob)
	}
}

func TestInsertIdempotency(t *testing.T) {
	db := openMemDB(t)

	s := model.MatchSummary{MatchHash: "idem1", MapName: "Arena", PlayedAt: "2025-01-01", DurationSecs: 2000}
	db.InsertMatch(s)
	// Second insert should not error (INSERT OR REPLACE).
	if err := db.InsertMatch(s); err != nil {
		t.Errorf("second InsertMatch should succeed (idempotent): %v", err)
	}

	m := []model.PlayerMetrics{{MatchHash: "idem1", PlayerID: 1, Name: "alice", Opening: "Drush",
		AgeUps: []model.AgeUp{{Era: model.EraFeudal, Seconds: 600}}}}
	if err := db.InsertPlayerMetrics(m); err != nil {
		t.Fatalf("InsertPlayerMetrics: %v", err)
	}
	if err := db.InsertPlayerMetrics(m); err != nil {
		t.Errorf("second InsertPlayerMetrics should succeed (idempotent): %v", err)
	}
	got, err := db.GetPlayerMetrics("idem1")
	if err != nil {
		t.Fatalf("GetPlayerMetrics: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 row after double insert, got %d", len(got))
	}
}

func TestCareerAggregates(t *testing.T) {
	db := openMemDB(t)

	db.InsertMatch(model.MatchSummary{MatchHash: "h1", MapName: "Arabia", PlayedAt: "2025-01-01", DurationSecs: 2000})
	db.InsertMatch(model.MatchSummary{MatchHash: "h2", MapName: "Arena", PlayedAt: "2025-01-02", DurationSecs: 3000})

	metrics := []model.PlayerMetrics{
		{MatchHash: "h1", PlayerID: 1, Name: "alice", Civilization: "Franks", Winner: true,
			Opening: "Scout Rush", EAPM: f64(40),
			Idle: &model.IdleBreakdown{TotalSecs: 100, ByEra: model.EraSeconds{Dark: 100}}},
		{MatchHash: "h2", PlayerID: 2, Name: "alice", Civilization: "Britons",
			Opening: "Scout Rush", EAPM: f64(60)},
	}
	if err := db.InsertPlayerMetrics(metrics); err != nil {
		t.Fatalf("InsertPlayerMetrics: %v", err)
	}

	c, err := db.GetPlayerCareer("alice")
	if err != nil {
		t.Fatalf("GetPlayerCareer: %v", err)
	}
	if c == nil {
		t.Fatal("expected career record")
	}
	if c.Games != 2 || c.Wins != 1 || c.WinRate() != 50 {
		t.Errorf("career counts mismatch: %+v", c)
	}
	if c.AvgDurationSecs != 2500 {
		t.Errorf("avg duration = %v, want 2500", c.AvgDurationSecs)
	}
	if c.AvgEAPM == nil || *c.AvgEAPM != 50 {
		t.Errorf("avg eapm = %v, want 50", c.AvgEAPM)
	}
	// Only one match has idle data; the average skips the other.
	if c.AvgIdleSecs == nil || *c.AvgIdleSecs != 100 {
		t.Errorf("avg idle = %v, want 100", c.AvgIdleSecs)
	}

	byCiv, err := db.WinRateByCivilization("alice")
	if err != nil {
		t.Fatalf("WinRateByCivilization: %v", err)
	}
	if len(byCiv) != 2 {
		t.Errorf("expected 2 civ rows, got %d", len(byCiv))
	}

	byOpening, err := db.WinRateByOpening("alice")
	if err != nil {
		t.Fatalf("WinRateByOpening: %v", err)
	}
	if len(byOpening) != 1 || byOpening[0].Games != 2 || byOpening[0].Wins != 1 {
		t.Errorf("opening win rate mismatch: %+v", byOpening)
	}

	if c2, err := db.GetPlayerCareer("nobody"); err != nil || c2 != nil {
		t.Errorf("unknown player should yield nil, got %+v, %v", c2, err)
	}
}
