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

package warmup

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

type State struct {
	dart.Progress
	Streaks int // 三鏢全中的回合數
}

type rules struct {
	cfg   Config
	info  game.Info
	slots [][dart.DartsPerRound]int
}

func newRules(cfg Config, info game.Info, slots [][dart.DartsPerRound]int) *rules {
	return &rules{cfg: cfg, info: info, slots: slots}
}

func (r *rules) initial() State {
	return State{Progress: dart.StartProgress()}
}

// CurrentTargets 本輪的三個槽位目標；終局時為空。
func (r *rules) CurrentTargets(s State) []int {
	if s.Finished() {
		return nil
	}
	i := min(max(0, s.Round-1), len(r.slots)-1)
	if i < 0 {
		return nil
	}
	row := r.slots[i]
	return row[:]
}

func (r *rules) Reduce(s State, ev dart.Event) State {
	if s.Finished() {
		return s
	}
	switch ev.Kind {
	case dart.EvThrow:
		if s.Darts.Full() {
			return s
		}
		s = r.throw(s, ev.Throw)
	case dart.EvNextRound:
		for !s.Darts.Full() {
			s = r.throw(s, dart.Miss())
		}
		s.Phase = dart.RoundFinalizing
	}
	if s.Phase == dart.RoundFinalizing {
		s = r.finalize(s)
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	idx := s.Darts.Len()
	target := r.CurrentTargets(s)[idx]
	o := dart.Outcome{Value: t.Value, Mult: t.Mult, Target: target}
	if t.Landed() && t.Value == target {
		o.Hit = true
		o.Points = t.Mult
		s.Points += t.Mult
		s.Tally.Hit(t.Mult, idx == 0)
	} else {
		s.Malus += r.cfg.Malus
		s.Tally.Miss()
	}
	s.Darts.Push(o)
	return s
}

func (r *rules) finalize(s State) State {
	if s.Darts.Hits() == dart.DartsPerRound {
		s.Streaks++
	}
	if s.Round >= r.cfg.Rounds {
		s.Finish()
		return s
	}
	s.Round++
	s.Darts.Reset()
	s.Phase = dart.Throwing
	return s
}

func (r *rules) Final(s State) dart.FinalStats {
	t := s.Tally
	hitRate := t.HitRate()

	sr := 0
	if !r.info.Training {
		multi := 0.0
		if t.Hits > 0 {
			multi = (float64(t.Doubles)*1.5 + float64(t.Triples)*2.5) / float64(t.Hits)
		}
		sr = dart.ClampSR(hitRate*120 + multi*30 + float64(s.Streaks*10))
	}

	won := s.Points >= r.cfg.MinPoints
	xp := float64(r.cfg.XPBase)
	if won {
		xp += float64(t.Triples*20 + t.Doubles*10 + s.Streaks*50)
		if hitRate > 0.6 {
			xp *= 1.8
		}
	} else {
		xp = math.Max(50, math.Floor(xp*0.3))
	}

	mode := fmt.Sprintf("Numbers Lvl %d", r.info.Level)
	if r.info.Training {
		mode = "Warmup Training"
	}
	return dart.FinalStats{
		XP:  dart.ScaleXP(xp, r.info.Training),
		SR:  sr,
		Won: won,
		Stats: dart.TallyFields(t).With(
			dart.F("streaks", s.Streaks),
			dart.F("finalScore", s.Points),
			dart.F("points", s.Points),
			dart.F("malus", s.Malus),
			dart.F("mode", mode),
		),
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	v.MaxRounds = r.cfg.Rounds
	targets := r.CurrentTargets(s)
	for _, n := range targets {
		v.Targets = append(v.Targets, strconv.Itoa(n))
	}
	if i := s.Darts.Len(); i < len(targets) {
		v.Target = strconv.Itoa(targets[i])
	}
	v.Extra = dart.Fields{
		dart.F("mode", string(r.cfg.Mode)),
		dart.F("minPoints", r.cfg.MinPoints),
		dart.F("streaks", s.Streaks),
	}
	return v
}
