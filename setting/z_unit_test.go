// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package setting

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

func TestMapperEvery(t *testing.T) {
	m := Mapper{Every: 5, Max: 4}
	cases := map[int]int{-3: 1, 0: 1, 4: 1, 5: 2, 9: 2, 10: 3, 15: 4, 1 << 30: 4}
	for in, want := range cases {
		if got := m.Map(in); got != want {
			t.Fatalf("Map(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMapperBreakpoints(t *testing.T) {
	m := Mapper{Breakpoints: []int{10, 20, 35}, Max: 10}
	cases := map[int]int{0: 1, 9: 1, 10: 2, 19: 2, 20: 3, 34: 3, 35: 4, 999: 4}
	for in, want := range cases {
		if got := m.Map(in); got != want {
			t.Fatalf("Map(%d) = %d, want %d", in, got, want)
		}
	}
	if got := (Mapper{Max: 3}).Map(50); got != 1 {
		t.Fatalf("empty mapper should always be 1, got %d", got)
	}
}

func TestMapperMonotone(t *testing.T) {
	m := Mapper{Breakpoints: []int{3, 8, 13, 21}, Max: 4}
	prev := 0
	for lv := -5; lv < 60; lv++ {
		got := m.Map(lv)
		if got < prev || got < 1 || got > 4 {
			t.Fatalf("Map(%d) = %d after %d", lv, got, prev)
		}
		prev = got
	}
}

func TestMapperValid(t *testing.T) {
	bad := []Mapper{
		{Max: 0},
		{Every: 2, Breakpoints: []int{1}, Max: 3},
		{Every: -1, Max: 3},
		{Breakpoints: []int{5, 3}, Max: 3},
		{Breakpoints: []int{3, 3}, Max: 3},
	}
	for i, m := range bad {
		if err := m.valid(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

type lvCfg struct {
	Rounds int `yaml:"rounds"`
}

func (c *lvCfg) Valid() error {
	if c.Rounds < 1 {
		return errs.NewFatal("rounds must be >= 1")
	}
	return nil
}

const sample = `game_id: demo
title: Demo Game
category: scoring
input: keypad
mapper:
  every: 10
  max: 9
training:
  options:
    - id: rounds
      label: Rounds
      type: number
      default: 7
levels:
  1: { rounds: 10 }
  4: { rounds: 8 }
  9: { rounds: 5 }
`

func TestDecodeTable(t *testing.T) {
	tb, err := Decode[lvCfg]([]byte(sample))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if tb.GameID != "demo" || tb.Training.GameID != "demo" || tb.MaxLevel() != 9 {
		t.Fatalf("unexpected header: %+v", tb.Header)
	}
	cases := []struct{ in, rounds, at int }{
		{-1, 10, 1}, {1, 10, 1}, {3, 10, 1}, {4, 8, 4}, {8, 8, 4}, {9, 5, 9}, {50, 5, 9},
	}
	for _, c := range cases {
		cfg, at := tb.Lookup(c.in)
		if cfg.Rounds != c.rounds || at != c.at {
			t.Fatalf("Lookup(%d) = (%d,%d), want (%d,%d)", c.in, cfg.Rounds, at, c.rounds, c.at)
		}
	}
	if !tb.Has(4) || tb.Has(5) {
		t.Fatalf("Has mismatch")
	}
	if got := tb.TrainingSettings(nil)["rounds"]; got != 7 {
		t.Fatalf("training default: %v", got)
	}
	if got := tb.TrainingSettings(dart.Settings{"rounds": 3})["rounds"]; got != 3 {
		t.Fatalf("training override: %v", got)
	}
	info := tb.Info(game.Params{Level: 40, Training: true, Seed: 3})
	if info.Level != 9 || !info.Training || info.Input != dart.InputKeypad || info.Seed != 3 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeRejects(t *testing.T) {
	bad := map[string]string{
		"unknown field": sample + "extra: 1\n",
		"bad category":  `{game_id: x, title: X, category: golf, input: board, mapper: {max: 1}, levels: {1: {rounds: 1}}}`,
		"bad input":     `{game_id: x, title: X, category: scoring, input: mouse, mapper: {max: 1}, levels: {1: {rounds: 1}}}`,
		"no levels":     `{game_id: x, title: X, category: scoring, input: board, mapper: {max: 1}}`,
		"level zero":    `{game_id: x, title: X, category: scoring, input: board, mapper: {max: 1}, levels: {0: {rounds: 1}}}`,
		"invalid level": `{game_id: x, title: X, category: scoring, input: board, mapper: {max: 1}, levels: {1: {rounds: 0}}}`,
		"no title":      `{game_id: x, category: scoring, input: board, mapper: {max: 1}, levels: {1: {rounds: 1}}}`,
	}
	for name, raw := range bad {
		if _, err := Decode[lvCfg]([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadAndHeader(t *testing.T) {
	fsys := fstest.MapFS{"demo.yaml": {Data: []byte(sample)}}
	if _, err := Load[lvCfg](fsys, "demo.yaml"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load[lvCfg](fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	h, keys, err := DecodeHeader([]byte(sample))
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Title != "Demo Game" || len(keys) != 3 || keys[0] != 1 || keys[2] != 9 {
		t.Fatalf("unexpected header %+v keys %v", h, keys)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustLoad should panic on missing file")
		}
	}()
	MustLoad[lvCfg](fsys, "missing.yaml")
}
