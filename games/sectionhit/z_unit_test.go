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

package sectionhit

import (
	"slices"
	"testing"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

func build(t *testing.T, p game.Params) *game.Machine[State] {
	t.Helper()
	e, err := Build(p)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return e.(*game.Machine[State])
}

func throws(m *game.Machine[State], mults ...int) {
	for _, x := range mults {
		m.Throw(dart.Throw{Mult: x})
	}
}

func TestSectionCompletesAfterRequiredHits(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	throws(m, 3, 1, 2)
	s := m.State()
	if s.Points != 6 || s.CompletedSections != 1 || s.Index != 1 || s.HitsOnTarget != 0 {
		t.Fatalf("unexpected state %+v", s)
	}
	if s.Pool.Energy != 6 {
		t.Fatalf("expected energy 6, got %v", s.Pool.Energy)
	}
}

func TestEnergyCap(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	for range 4 {
		throws(m, 1, 1, 1)
		m.NextRound()
	}
	if got := m.State().Pool.Energy; got != energyCap {
		t.Fatalf("expected energy capped at %d, got %v", energyCap, got)
	}
}

func TestMissesDrainEnergyThenLives(t *testing.T) {
	m := build(t, game.Params{Level: 5})
	throws(m, 0, 0, 0)
	if s := m.State(); s.Pool.Energy != 0 || s.Malus != 0 || s.Round != 1 {
		t.Fatalf("energy should absorb first: %+v", s)
	}
	m.NextRound()
	throws(m, 0)
	s := m.State()
	if !s.Finished() || s.Malus != malusLife {
		t.Fatalf("expected finish on last life with malus %d, got finished=%v malus=%d", malusLife, s.Finished(), s.Malus)
	}
}

func TestTrainingExhaustedMalus(t *testing.T) {
	m := build(t, game.Params{Training: true, Settings: dart.Settings{"startHerz": 1, "startBlitz": 0}})
	throws(m, 0, 0)
	s := m.State()
	if s.Finished() {
		t.Fatalf("training must not end on lives")
	}
	if s.Malus != malusLife+malusNoLife {
		t.Fatalf("unexpected malus %d", s.Malus)
	}
	throws(m, 1)
	if got := m.State().Pool.Energy; got != 1 {
		t.Fatalf("hit must regen inactive energy, got %v", got)
	}
}

func TestRoundLimit(t *testing.T) {
	m := build(t, game.Params{Training: true, Settings: dart.Settings{"maxRounds": "5"}})
	for range 4 {
		m.NextRound()
	}
	if m.Finished() {
		t.Fatalf("finished too early")
	}
	m.NextRound()
	if !m.Finished() {
		t.Fatalf("expected finish after round limit")
	}
	if tl := m.State().Tally; tl.TotalDarts != 15 || tl.Misses != 15 {
		t.Fatalf("skipped darts must count as misses: %+v", tl)
	}
}

func TestNextRoundFillsMisses(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	throws(m, 1)
	m.NextRound()
	s := m.State()
	if s.Tally.TotalDarts != 3 || s.Tally.Misses != 2 || s.Tally.Hits != 1 {
		t.Fatalf("unexpected tally %+v", s.Tally)
	}
	// 3 起始 +1 命中回復 -2 落空
	if s.Pool.Energy != 2 || s.Malus != 0 {
		t.Fatalf("expected energy 2 and no malus, got %v malus=%d", s.Pool.Energy, s.Malus)
	}
	if s.Round != 2 || !s.Darts.Empty() {
		t.Fatalf("expected fresh round 2, got round=%d darts=%d", s.Round, s.Darts.Len())
	}
}

func TestNextRoundFillStopsOnLastLife(t *testing.T) {
	m := build(t, game.Params{Level: 5})
	throws(m, 0, 0, 0)
	m.NextRound()
	m.NextRound()
	s := m.State()
	if !s.Finished() || s.Tally.TotalDarts != 4 || s.Malus != malusLife {
		t.Fatalf("fill must stop at game end: finished=%v darts=%d malus=%d", s.Finished(), s.Tally.TotalDarts, s.Malus)
	}
	cfg, _ := Table().Lookup(5)
	if !s.Pool.Within(poolRule(cfg, false)) {
		t.Fatalf("pool out of bounds: %+v", s.Pool)
	}
}

func TestTrainingTargetsFromSeed(t *testing.T) {
	a := build(t, game.Params{Training: true, Seed: 42})
	b := build(t, game.Params{Training: true, Seed: 42})
	if a.View().Progress != "0/100" {
		t.Fatalf("expected 100 random targets, got %s", a.View().Progress)
	}
	for range 30 {
		if a.View().Target != b.View().Target {
			t.Fatalf("same seed produced different targets")
		}
		throws(a, 1)
		throws(b, 1)
		if a.State().Darts.Full() {
			a.NextRound()
			b.NextRound()
		}
	}
}

func TestCurrentTargetsLookAhead(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	if got := m.View().Targets; !slices.Equal(got, []string{"10", "10", "10"}) {
		t.Fatalf("unexpected targets %v", got)
	}
	throws(m, 1, 1)
	if got := m.View().Targets; !slices.Equal(got, []string{"10", "11", "11"}) {
		t.Fatalf("unexpected targets %v", got)
	}
}

func TestWinStats(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	for !m.Finished() {
		throws(m, 1, 1, 1)
		m.NextRound()
	}
	s := m.State()
	if s.Round != 6 || s.Points != 18 {
		t.Fatalf("unexpected round=%d points=%d", s.Round, s.Points)
	}
	fs := m.FinalStats()
	if !fs.Won {
		t.Fatalf("expected win")
	}
	// 750 + 18*25 + 6*15
	if fs.XP != 1290 {
		t.Fatalf("expected xp 1290, got %d", fs.XP)
	}
	// 100 + 50 + (20-6)/20*30
	if fs.SR != 171 {
		t.Fatalf("expected sr 171, got %d", fs.SR)
	}
	if v, _ := fs.Stats.Get("completed"); v != "6/6" {
		t.Fatalf("unexpected completed %v", v)
	}
	if m.View().Target != "DONE" {
		t.Fatalf("expected DONE target")
	}
}

func TestTrainingFinal(t *testing.T) {
	m := build(t, game.Params{Training: true, Seed: 1})
	throws(m, 1, 0, 3)
	fs := m.FinalStats()
	if !fs.Won || fs.SR != 0 || fs.XP != 8 {
		t.Fatalf("unexpected training stats %+v", fs)
	}
}

func TestLossXPFloor(t *testing.T) {
	m := build(t, game.Params{Level: 5})
	throws(m, 0, 0, 0)
	m.NextRound()
	throws(m, 0)
	fs := m.FinalStats()
	if fs.Won || fs.XP != 100 || fs.SR != 0 {
		t.Fatalf("unexpected loss stats %+v", fs)
	}
}

func TestUndo(t *testing.T) {
	m := build(t, game.Params{Level: 3})
	throws(m, 2, 0)
	before := m.State()
	throws(m, 1)
	m.Undo()
	if m.State() != before {
		t.Fatalf("undo mismatch")
	}
}

func TestMapper(t *testing.T) {
	mp := Table().Mapper
	cases := map[int]int{0: 1, 9: 1, 10: 2, 19: 2, 20: 3, 34: 3, 35: 4, 50: 5, 69: 5, 70: 6, 1 << 30: 6}
	for pl, want := range cases {
		if got := mp.Map(pl); got != want {
			t.Fatalf("Map(%d) = %d, want %d", pl, got, want)
		}
	}
}
