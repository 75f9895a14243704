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

package game121

import (
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

func hit(m *game.Machine[State], pairs ...[2]int) {
	for _, p := range pairs {
		m.Throw(dart.NewThrow(p[0], p[1]))
	}
}

func TestCheckoutAdvancesTarget(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 3}, [2]int{1, 1})
	s := m.State()
	if s.Points != checkReward || s.Checks != 1 || s.Target != 66 || s.Score != 66 || s.Round != 2 {
		t.Fatalf("unexpected state after checkout %+v", s)
	}
	if s.PerfectDarts != 3 || s.T20FirstDart != 1 || s.Tally.TotalDarts != 2 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if !s.Darts.Empty() {
		t.Fatalf("checkout must complete the round")
	}
}

func TestSingleOutBust(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 3}, [2]int{20, 1})
	s := m.State()
	if s.Score != 61 || !s.Darts.Full() || s.Tally.TotalDarts != 3 {
		t.Fatalf("bust must revert and fill: %+v", s)
	}
	if !s.Darts.At(1).Bust || !s.Darts.At(2).Bust || !s.Darts.At(2).Filler {
		t.Fatalf("expected bust placeholders, got %+v", s.Darts.Darts())
	}
	if m.Throw(dart.NewThrow(1, 1)) {
		t.Fatalf("throw after bust must be rejected")
	}
}

func TestDoubleOut(t *testing.T) {
	// 40 → (20,2) → 0 合法
	m := build(t, game.Params{Level: 2})
	hit(m, [2]int{7, 3}, [2]int{20, 2})
	if s := m.State(); s.Checks != 1 || s.Target != 66 {
		t.Fatalf("expected valid double finish, got %+v", s)
	}

	// 20 → (20,1) → 0 爆鏢
	m = build(t, game.Params{Level: 2})
	hit(m, [2]int{20, 2}, [2]int{1, 1}, [2]int{20, 1})
	if s := m.State(); s.Checks != 0 || s.Score != 61 || !s.Darts.At(2).Bust {
		t.Fatalf("expected single finish bust, got %+v", s)
	}

	// 剩 1 爆鏢
	m = build(t, game.Params{Level: 2})
	hit(m, [2]int{20, 3})
	if s := m.State(); s.Score != 61 || !s.Darts.Full() {
		t.Fatalf("leaving 1 must bust, got %+v", s)
	}

	// 內圈 Bull 算雙倍
	m = build(t, game.Params{Level: 2})
	hit(m, [2]int{11, 1}, [2]int{25, 2})
	if s := m.State(); s.Checks != 1 {
		t.Fatalf("bullseye must be a valid double finish, got %+v", s)
	}
}

func TestFailedTargetResets(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 3}, [2]int{1, 1}) // 66
	m.NextRound()
	m.NextRound()
	if s := m.State(); s.RoundsUsed != 2 || s.Target != 66 {
		t.Fatalf("unexpected state %+v", s)
	}
	m.NextRound()
	s := m.State()
	if s.Malus != 5 || s.TargetsPlayed != 2 || s.Target != 61 || s.Score != 61 || s.RoundsUsed != 0 {
		t.Fatalf("failed target must reset to start with malus: %+v", s)
	}
}

func TestScoreCarriesAcrossRounds(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 1})
	m.NextRound()
	if s := m.State(); s.Score != 41 || s.Tally.TotalDarts != 3 {
		t.Fatalf("score must carry over within the target: %+v", s)
	}
}

func TestLossAfterAllFailures(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	for range 15 {
		m.NextRound()
	}
	if !m.Finished() {
		t.Fatalf("expected finish after 5 failed targets")
	}
	fs := m.FinalStats()
	if fs.Won || fs.XP != 200 || fs.SR != 0 {
		t.Fatalf("unexpected final %+v", fs)
	}
	if fs.Stats.Int("finalPoints") != -25 {
		t.Fatalf("unexpected final points %v", fs.Stats.Int("finalPoints"))
	}
}

func TestWin(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 3}, [2]int{1, 1})
	hit(m, [2]int{20, 3}, [2]int{6, 1})
	hit(m, [2]int{20, 3}, [2]int{11, 1})
	hit(m, [2]int{20, 3}, [2]int{16, 1})
	hit(m, [2]int{20, 3}, [2]int{20, 1}, [2]int{1, 1})
	if !m.Finished() {
		t.Fatalf("expected finish after 5 checks")
	}
	fs := m.FinalStats()
	// 720 + 360 + 216
	if !fs.Won || fs.XP != 1296 || fs.SR != 180 {
		t.Fatalf("unexpected final %+v", fs)
	}
	if fs.Stats.Int("perfectDartsNeeded") != 15 || fs.Stats.Int("t20FirstDart") != 5 {
		t.Fatalf("unexpected stats %v", fs.Stats.Map())
	}
}

func TestHighLevelStepAndHybrid(t *testing.T) {
	m := build(t, game.Params{Level: 10})
	if got, _ := m.View().Extra.Get("checkMode"); got != "single" {
		t.Fatalf("121 is below switch 123, expected single, got %v", got)
	}
	hit(m, [2]int{20, 3}, [2]int{20, 3}, [2]int{1, 1})
	if s := m.State(); s.Target != 122 {
		t.Fatalf("level >= 10 steps by 1, got %d", s.Target)
	}

	m = build(t, game.Params{Level: 5})
	hit(m, [2]int{20, 3}, [2]int{20, 1}, [2]int{1, 1})
	if got, _ := m.View().Extra.Get("checkMode"); got != "double" {
		t.Fatalf("86 is above switch 82, expected double, got %v", got)
	}
}

func TestDerivedLevels(t *testing.T) {
	cases := []struct{ level, start, rounds, targets int }{
		{7, 96, 3, 6},
		{9, 106, 3, 6},
		{12, 121, 8, 7},
		{15, 121, 5, 7},
		{19, 121, 2, 7},
		{20, 121, 2, 10},
	}
	for _, c := range cases {
		cfg := LevelConfig(c.level)
		if cfg.Start != c.start || cfg.Rounds != c.rounds || cfg.TotalTargets != c.targets {
			t.Fatalf("level %d: got %+v", c.level, cfg)
		}
	}
}

func TestTrainingDefaults(t *testing.T) {
	m := build(t, game.Params{Training: true})
	v := m.View()
	if v.Score != 61 || v.MaxRounds != 2 || v.Progress != "0/3" {
		t.Fatalf("unexpected training defaults %+v", v)
	}
	m.NextRound()
	m.NextRound()
	if s := m.State(); s.Malus != 0 || s.TargetsPlayed != 1 {
		t.Fatalf("training fail must not add malus: %+v", s)
	}

	m = build(t, game.Params{Training: true, Settings: dart.Settings{"totalTargets": "0", "roundsPerTarget": "x"}})
	if v := m.View(); v.MaxRounds != 2 || v.Progress != "0/3" {
		t.Fatalf("invalid values must fall back to the listed defaults %+v", v)
	}

	m = build(t, game.Params{Training: true, Settings: dart.Settings{"startTarget": "121", "checkMode": "double", "resetToStart": false}})
	hit(m, [2]int{20, 3}, [2]int{20, 3}, [2]int{1, 1})
	if m.State().Checks != 0 {
		t.Fatalf("single finish must bust in double out")
	}
	if got := m.View().Score; got != 121 {
		t.Fatalf("expected revert to 121, got %d", got)
	}
}

func TestUndoRestoresCheckout(t *testing.T) {
	m := build(t, game.Params{Level: 1})
	hit(m, [2]int{20, 3})
	before := m.State()
	hit(m, [2]int{1, 1})
	m.Undo()
	if m.State() != before {
		t.Fatalf("undo must revert the checkout and the round change")
	}
}
