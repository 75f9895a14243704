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

package checkoutchallenge

import (
	"testing"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// fixed 以指定的數字序列建立 Machine，避開亂數。
func fixed(t *testing.T, cfg Config, targets ...int) *game.Machine[State] {
	t.Helper()
	cfg.Attempts = len(targets)
	if err := cfg.Valid(); err != nil {
		t.Fatalf("invalid cfg: %v", err)
	}
	info := table.Info(game.Params{Level: 1})
	r := newRules(cfg, info, targets)
	return game.NewMachine[State](info, r, r.initial())
}

func hit(m *game.Machine[State], pairs ...[2]int) {
	for _, p := range pairs {
		m.Throw(dart.NewThrow(p[0], p[1]))
	}
}

func doubleOut() Config {
	return Config{Min: 2, Max: 170, Attempts: 1, Check: dart.DoubleOut, MinPoints: 20, Malus: 5, Rounds: 3}
}

func TestDoubleOutFinishAndBust(t *testing.T) {
	m := fixed(t, doubleOut(), 40, 20, 50)
	hit(m, [2]int{20, 2})
	s := m.State()
	if s.Points != checkReward || s.Checks != 1 || s.Index != 1 || s.Score != 20 || s.Round != 2 {
		t.Fatalf("(20,2) from 40 must check, got %+v", s)
	}
	if !s.Darts.Empty() || s.Tally.TotalDarts != 1 {
		t.Fatalf("checkout must close the round without counting fillers: %+v", s)
	}

	hit(m, [2]int{20, 1})
	s = m.State()
	if s.Score != 20 || s.Checks != 1 || !s.Darts.Full() {
		t.Fatalf("(20,1) from 20 must bust, got %+v", s)
	}
	for i := range 3 {
		if !s.Darts.At(i).Bust {
			t.Fatalf("dart %d must be marked bust", i)
		}
	}
	if s.Tally.TotalDarts != 4 {
		t.Fatalf("bust placeholders count as darts, got %d", s.Tally.TotalDarts)
	}
}

func TestRoundsExhausted(t *testing.T) {
	m := fixed(t, doubleOut(), 40, 50)
	hit(m, [2]int{10, 1})
	m.NextRound()
	if s := m.State(); s.Score != 30 || s.RoundsUsed != 1 || s.Round != 2 {
		t.Fatalf("score must carry into the next round: %+v", s)
	}
	m.NextRound()
	m.NextRound()
	s := m.State()
	if s.Malus != 5 || s.Misses != 1 || s.Index != 1 || s.Score != 50 || s.RoundsUsed != 0 || s.Round != 4 {
		t.Fatalf("unexpected state after failed target %+v", s)
	}
	if s.Tally.TotalDarts != 9 {
		t.Fatalf("expected 9 darts, got %d", s.Tally.TotalDarts)
	}
}

func TestFinishAndFinal(t *testing.T) {
	m := fixed(t, doubleOut(), 40, 32)
	hit(m, [2]int{20, 1}, [2]int{10, 1}, [2]int{5, 2})
	hit(m, [2]int{16, 2})
	if !m.Finished() {
		t.Fatalf("expected finish after last attempt")
	}
	fs := m.FinalStats()
	// checkRate 100 + efficiency (4/4)*50 + doubles 2*2
	if !fs.Won || fs.SR != 154 {
		t.Fatalf("unexpected final %+v", fs)
	}
	if fs.XP != 1296 {
		t.Fatalf("expected xp 1296, got %d", fs.XP)
	}
	if fs.Stats.Int("pointsCleared") != 72 || fs.Stats.Int("perfectDartsNeeded") != 4 {
		t.Fatalf("unexpected stats %v", fs.Stats.Map())
	}

	before := m.State()
	if m.Throw(dart.NewThrow(20, 1)) || m.NextRound() || m.State() != before {
		t.Fatalf("finished session must reject further events")
	}
}

func TestLoss(t *testing.T) {
	m := fixed(t, doubleOut(), 40)
	for range 3 {
		m.NextRound()
	}
	fs := m.FinalStats()
	if !m.Finished() || fs.Won || fs.XP != 250 || fs.SR != 0 {
		t.Fatalf("unexpected loss final %+v", fs)
	}
	if fs.Stats.Int("finalPoints") != -5 {
		t.Fatalf("unexpected final points %d", fs.Stats.Int("finalPoints"))
	}
}

func TestHybridFollowsTarget(t *testing.T) {
	cfg := Config{Min: 2, Max: 170, Check: dart.Hybrid, SwitchTarget: 80}
	m := fixed(t, cfg, 60, 80)
	if got, _ := m.View().Extra.Get("checkMode"); got != "single" {
		t.Fatalf("60 is below switch, got %v", got)
	}
	hit(m, [2]int{20, 3})
	if got, _ := m.View().Extra.Get("checkMode"); got != "double" {
		t.Fatalf("80 is at switch, got %v", got)
	}
	hit(m, [2]int{20, 3}, [2]int{20, 1})
	if s := m.State(); s.Checks != 1 || s.Score != 80 {
		t.Fatalf("single finish on 80 must bust, got %+v", s)
	}
}

func TestDrawnTargets(t *testing.T) {
	for _, lv := range []int{1, 4, 10, 20} {
		a, err := Build(game.Params{Level: lv, Seed: 42})
		if err != nil {
			t.Fatalf("build level %d: %v", lv, err)
		}
		b, _ := Build(game.Params{Level: lv, Seed: 42})
		ra := a.(*game.Machine[State])
		rb := b.(*game.Machine[State])
		if ra.View().Target != rb.View().Target {
			t.Fatalf("same seed must draw the same targets")
		}
		cfg := LevelConfig(lv)
		score := ra.View().Score
		if score < cfg.Min || score > cfg.Max {
			t.Fatalf("level %d target %d outside [%d,%d]", lv, score, cfg.Min, cfg.Max)
		}
	}
}

func TestDerivedLevels(t *testing.T) {
	cases := []struct {
		level, lo, hi, minPoints, malus int
		check                           dart.CheckMode
	}{
		{4, 24, 64, 38, 7, dart.Hybrid},
		{5, 30, 70, 40, 7, dart.Hybrid},
		{7, 42, 82, 44, 8, dart.DoubleOut},
		{19, 114, 154, 68, 14, dart.DoubleOut},
	}
	for _, c := range cases {
		cfg := LevelConfig(c.level)
		if cfg.Min != c.lo || cfg.Max != c.hi || cfg.MinPoints != c.minPoints || cfg.Malus != c.malus || cfg.Check != c.check {
			t.Fatalf("level %d: got %+v", c.level, cfg)
		}
		if cfg.SwitchTarget != 80 || cfg.Rounds != 3 || cfg.Attempts != 10 {
			t.Fatalf("level %d: unexpected fixed fields %+v", c.level, cfg)
		}
	}
	if cfg := LevelConfig(10); cfg.SwitchTarget != 90 || cfg.Check != dart.Hybrid {
		t.Fatalf("level 10 must come from the table, got %+v", cfg)
	}
}

func TestTrainingConfig(t *testing.T) {
	cfg := trainingConfig(nil)
	if cfg.Min != 41 || cfg.Max != 80 || cfg.Check != dart.DoubleOut || cfg.Attempts != 10 || cfg.Rounds != 3 {
		t.Fatalf("unexpected training defaults %+v", cfg)
	}
	cfg = trainingConfig(dart.Settings{"difficulty": "121-170", "checkMode": "single", "attempts": 5.0, "roundsPerTarget": "2"})
	if cfg.Min != 121 || cfg.Max != 170 || cfg.Check != dart.SingleOut || cfg.Attempts != 5 || cfg.Rounds != 2 {
		t.Fatalf("unexpected training config %+v", cfg)
	}

	e, err := Build(game.Params{Training: true, Seed: 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	m := e.(*game.Machine[State])
	for range 3 {
		m.NextRound()
	}
	if s := m.State(); s.Malus != 0 || s.Misses != 1 {
		t.Fatalf("training fail must not add malus: %+v", s)
	}
}

func TestUndo(t *testing.T) {
	m := fixed(t, doubleOut(), 40, 20)
	start := m.State()
	hit(m, [2]int{20, 1})
	mid := m.State()
	hit(m, [2]int{10, 2})
	if m.State().Checks != 1 {
		t.Fatalf("expected checkout")
	}
	m.Undo()
	if m.State() != mid {
		t.Fatalf("undo must revert the checkout")
	}
	m.Undo()
	if m.State() != start || m.Undo() {
		t.Fatalf("undo must reach the initial state and stop")
	}
}
