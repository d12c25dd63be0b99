// Package decoder reads the action-log files the external replay decoder
// emits: one JSON document per match with the match header, player roster,
// optional precomputed age-up boundaries, and the flat command stream. A
// document that fails schema validation is the one hard error of the whole
// pipeline; everything downstream degrades per-metric instead of failing.
package decoder

import (
	"crypto/sha256"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/blzulian/agemetrics/internal/model"
)

//go:embed schema.json
var schemaJSON string

var actionLogSchema = jsonschema.MustCompileString("actions.schema.json", schemaJSON)

type wireCoord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireEvent struct {
	T        float64    `json:"t"`
	Player   int        `json:"player"`
	Category string     `json:"category"`
	Subject  string     `json:"subject"`
	Amount   int        `json:"amount"`
	Pos      *wireCoord `json:"pos"`
	PosEnd   *wireCoord `json:"pos_end"`
}

type wireLog struct {
	Match struct {
		Map          string  `json:"map"`
		PlayedAt     string  `json:"played_at"`
		GameType     string  `json:"game_type"`
		DurationSecs float64 `json:"duration_secs"`
		PopLimit     int     `json:"pop_limit"`
		Completed    bool    `json:"completed"`
	} `json:"match"`
	Players []struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Civilization string `json:"civilization"`
		Winner       bool   `json:"winner"`
		ELO          *int   `json:"elo"`
	} `json:"players"`
	AgeUps map[string][]struct {
		Era string  `json:"era"`
		T   float64 `json:"t"`
	} `json:"age_ups"`
	Events []wireEvent `json:"events"`
}

// DecodeFile reads and validates one action-log file.
func DecodeFile(path string) (*model.RawMatch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read action log: %w", err)
	}
	m, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return m, nil
}

// Decode validates a raw action-log document and maps it to the engine's
// input form. The document's SHA-256 becomes the match identity, so the
// same file ingested twice resolves to the same match.
func Decode(raw []byte) (*model.RawMatch, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid action log: %w", err)
	}
	if err := actionLogSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid action log: %w", err)
	}

	var w wireLog
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("invalid action log: %w", err)
	}

	out := &model.RawMatch{
		MatchHash:    fmt.Sprintf("%x", sha256.Sum256(raw)),
		MapName:      w.Match.Map,
		PlayedAt:     w.Match.PlayedAt,
		GameType:     w.Match.GameType,
		DurationSecs: w.Match.DurationSecs,
		PopLimit:     w.Match.PopLimit,
		Completed:    w.Match.Completed,
	}
	for _, p := range w.Players {
		out.Players = append(out.Players, model.PlayerInfo{
			ID:           p.ID,
			Name:         p.Name,
			Civilization: p.Civilization,
			Winner:       p.Winner,
			ELO:          p.ELO,
		})
	}
	if len(w.AgeUps) > 0 {
		out.AgeUps = make(map[int][]model.AgeUp, len(w.AgeUps))
		for key, ups := range w.AgeUps {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("invalid action log: age_ups key %q is not a player id", key)
			}
			for _, up := range ups {
				out.AgeUps[id] = append(out.AgeUps[id], model.AgeUp{
					Era:     model.ParseEra(up.Era),
					Seconds: up.T,
				})
			}
		}
	}
	for _, ev := range w.Events {
		out.Events = append(out.Events, model.ActionEvent{
			Seconds:  ev.T,
			PlayerID: ev.Player,
			Category: model.Category(ev.Category),
			Subject:  ev.Subject,
			Amount:   ev.Amount,
			Pos:      coord(ev.Pos),
			PosEnd:   coord(ev.PosEnd),
		})
	}
	return out, nil
}

func coord(c *wireCoord) *model.Coord {
	if c == nil {
		return nil
	}
	return &model.Coord{X: c.X, Y: c.Y}
}
