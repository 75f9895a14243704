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

package shanghai

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

func TestTargetAdvancesEveryRound(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	throws(m, 1, 2, 3)
	s := m.State()
	if s.Points != 90 || s.ThirdDartHits != 1 || s.Finished() {
		t.Fatalf("unexpected state %+v", s)
	}
	m.NextRound()
	if v := m.View(); v.Target != "16" || v.Round != 2 {
		t.Fatalf("expected target 16 in round 2, got %s round %d", v.Target, v.Round)
	}
	throws(m, 1)
	m.NextRound()
	if m.View().Target != "17" {
		t.Fatalf("target must advance every round")
	}
	if s := m.State(); s.Tally.Misses != 2 || s.Pool.Energy != 1 || s.Malus != 0 {
		t.Fatalf("filled misses must drain energy: %+v", s)
	}
}

func TestBurnoutSkipsRound(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	throws(m, 0, 0, 0)
	s := m.State()
	if s.Round != 3 || s.Index != 1 || s.Malus != malusBurnout {
		t.Fatalf("unexpected burnout state round=%d index=%d malus=%d", s.Round, s.Index, s.Malus)
	}
	throws(m, 0)
	if got := m.State().Malus; got != malusBurnout+malusEmpty {
		t.Fatalf("expected empty pool malus, got %d", got)
	}
}

func TestEnergyCostTwo(t *testing.T) {
	m := build(t, game.Params{Level: 4})
	throws(m, 0, 0)
	s := m.State()
	if s.Round != 3 || s.Tally.TotalDarts != 3 || s.Tally.Misses != 3 {
		t.Fatalf("expected burnout on second dart, got %+v", s)
	}
}

func TestLivesEndMatch(t *testing.T) {
	m := build(t, game.Params{Level: 9})
	throws(m, 0, 0, 0)
	s := m.State()
	if !s.Finished() || s.Pool.Lives != 0 || s.Malus != 0 {
		t.Fatalf("expected finish on last life, got %+v", s)
	}
	if m.FinalStats().Won {
		t.Fatalf("expected loss")
	}
}

func TestShanghaiOut(t *testing.T) {
	for _, order := range [][]int{{1, 2, 3}, {3, 2, 1}, {2, 3, 1}} {
		m := build(t, game.Params{Training: true, Settings: dart.Settings{"shanghaiOut": true}})
		throws(m, order...)
		if !m.Finished() {
			t.Fatalf("%v: expected shanghai finish", order)
		}
		fs := m.FinalStats()
		if !fs.Won || fs.SR != 0 {
			t.Fatalf("%v: unexpected final %+v", order, fs)
		}
	}

	m := build(t, game.Params{Training: true, Settings: dart.Settings{"shanghaiOut": true}})
	throws(m, 1, 1, 3)
	if m.Finished() {
		t.Fatalf("no double, must not finish")
	}
	m = build(t, game.Params{Training: true})
	throws(m, 1, 2, 3)
	if m.Finished() {
		t.Fatalf("shanghai-out disabled, must not finish")
	}
}

func TestFullMatchWin(t *testing.T) {
	m := build(t, game.Params{Level: 4})
	for !m.Finished() {
		throws(m, 1, 1, 1)
		m.NextRound()
	}
	s := m.State()
	if s.Points != 315 || s.Round != 7 {
		t.Fatalf("unexpected points=%d round=%d", s.Points, s.Round)
	}
	fs := m.FinalStats()
	if !fs.Won {
		t.Fatalf("expected win")
	}
	// 700+4*25 + 6*20 + 6*40 + 400
	if fs.XP != 1560 {
		t.Fatalf("expected xp 1560, got %d", fs.XP)
	}
	// 315/945*70 + 70 + 16
	if fs.SR != 109 {
		t.Fatalf("expected sr 109, got %d", fs.SR)
	}
}

func TestTrainingXP(t *testing.T) {
	m := build(t, game.Params{Training: true, Level: 7})
	throws(m, 2, 0, 3)
	fs := m.FinalStats()
	// 100 + (20 + 40 + 15 + 30) * 0.1
	if fs.XP != 110 || fs.Mode() != "Shanghai Training" {
		t.Fatalf("unexpected training final %+v", fs)
	}
}

func TestTrainingCombo(t *testing.T) {
	m := build(t, game.Params{Training: true, Settings: dart.Settings{"combo": "12-B"}})
	v := m.View()
	if v.Progress != "1/10" || !slices.Equal(v.Targets, []string{"12", "12", "12"}) {
		t.Fatalf("unexpected view %+v", v)
	}
	if Table().Levels[1].MaxPoints() != 945 {
		t.Fatalf("unexpected max points")
	}
}

func TestUndoAfterBurnout(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	throws(m, 0, 0)
	before := m.State()
	throws(m, 0)
	if m.State().Round != 3 {
		t.Fatalf("expected burnout")
	}
	m.Undo()
	if m.State() != before {
		t.Fatalf("undo must revert the whole burnout transition")
	}
}
