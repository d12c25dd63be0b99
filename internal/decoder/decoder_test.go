package decoder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blzulian/agemetrics/internal/model"
)

const sampleLog = `{
  "match": {"map": "Arabia", "played_at": "2025-11-02T19:30:00Z", "game_type": "1v1",
            "duration_secs": 2400, "pop_limit": 200, "completed": true},
  "players": [
    {"id": 1, "name": "alice", "civilization": "Franks", "winner": true, "elo": 1450},
    {"id": 2, "name": "bob", "civilization": "Britons"}
  ],
  "age_ups": {"1": [{"era": "Feudal", "t": 610}, {"era": "Castle", "t": 1105}]},
  "events": [
    {"t": 0, "player": 1, "category": "Queue", "subject": "Villager", "amount": 3},
    {"t": 40, "player": 1, "category": "Build", "subject": "House", "pos": {"x": 10, "y": 12}},
    {"t": 900, "player": 2, "category": "Wall", "subject": "Palisade Wall",
     "pos": {"x": 0, "y": 0}, "pos_end": {"x": 9, "y": 0}},
    {"t": 52, "player": 2, "category": "Move"}
  ]
}`

func TestDecode(t *testing.T) {
	m, err := Decode([]byte(sampleLog))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.MapName != "Arabia" || m.DurationSecs != 2400 || !m.Completed {
		t.Errorf("header wrong: %+v", m)
	}
	if len(m.MatchHash) != 64 {
		t.Errorf("match hash = %q, want sha256 hex", m.MatchHash)
	}
	if len(m.Players) != 2 || m.Players[0].ELO == nil || *m.Players[0].ELO != 1450 {
		t.Errorf("players wrong: %+v", m.Players)
	}
	if m.Players[1].ELO != nil {
		t.Error("absent elo should stay nil")
	}
	if ups := m.AgeUps[1]; len(ups) != 2 || ups[0].Era != model.EraFeudal || ups[0].Seconds != 610 {
		t.Errorf("age_ups wrong: %+v", m.AgeUps)
	}
	if len(m.Events) != 4 {
		t.Fatalf("got %d events", len(m.Events))
	}
	wallEv := m.Events[2]
	if wallEv.Category != model.CategoryWall || wallEv.PosEnd == nil || wallEv.PosEnd.X != 9 {
		t.Errorf("wall event wrong: %+v", wallEv)
	}
	if m.Events[0].Amount != 3 {
		t.Errorf("amount wrong: %+v", m.Events[0])
	}
}

func TestDecodeSameBytesSameHash(t *testing.T) {
	a, err := Decode([]byte(sampleLog))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Decode([]byte(sampleLog))
	if err != nil {
		t.Fatal(err)
	}
	if a.MatchHash != b.MatchHash {
		t.Errorf("hashes differ: %s vs %s", a.MatchHash, b.MatchHash)
	}
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not json", "not json at all"},
		{"missing match header", `{"players": [{"id":1,"name":"a"}], "events": []}`},
		{"no players", `{"match": {"map":"Arabia","duration_secs":100}, "players": [], "events": []}`},
		{"bad category", `{"match": {"map":"Arabia","duration_secs":100},
			"players": [{"id":1,"name":"a"}],
			"events": [{"t":0,"player":1,"category":"Teleport"}]}`},
		{"negative timestamp", `{"match": {"map":"Arabia","duration_secs":100},
			"players": [{"id":1,"name":"a"}],
			"events": [{"t":-5,"player":1,"category":"Move"}]}`},
		{"zero duration", `{"match": {"map":"Arabia","duration_secs":0},
			"players": [{"id":1,"name":"a"}], "events": []}`},
	}
	for _, tc := range cases {
		if _, err := Decode([]byte(tc.doc)); err == nil {
			t.Errorf("%s: Decode accepted invalid document", tc.name)
		} else if !strings.Contains(err.Error(), "invalid action log") {
			t.Errorf("%s: error %q not flagged as rejected input", tc.name, err)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.actions.json")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	if m.MapName != "Arabia" {
		t.Errorf("map = %q", m.MapName)
	}
	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
