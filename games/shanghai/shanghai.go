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
	"fmt"
	"math"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

type State struct {
	dart.Progress
	Pool          dart.Pool
	Index         int
	Burnout       bool
	ThirdDartHits int
	// Shanghai 以單、雙、三倍各一鏢（第三鏢命中）結束比賽。
	Shanghai bool
}

type rules struct {
	cfg       Config
	info      game.Info
	pool      dart.PoolRule
	maxPoints int
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
		for s.Phase == dart.Throwing && !s.Darts.Full() {
			s = r.throw(s, dart.Miss())
		}
		if !s.Finished() {
			s.Phase = dart.RoundFinalizing
		}
	}
	if s.Phase == dart.RoundFinalizing {
		s = r.finalize(s)
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	first := s.Darts.Empty()
	tg := r.cfg.Targets[s.Index]
	if tg.Hits(t.Mult) {
		pts := tg.Score(t.Mult)
		s.Darts.Push(dart.Outcome{Value: tg.Value(), Mult: t.Mult, Points: pts, Hit: true, Target: tg.Value()})
		s.Tally.Hit(t.Mult, first)
		s.Points += pts
		if s.Darts.Full() {
			s.ThirdDartHits++
		}
		s.Pool.Regen(r.pool)
		if r.cfg.ShanghaiOut && s.Darts.Full() &&
			s.Darts.HasMult(dart.MultSingle) && s.Darts.HasMult(dart.MultDouble) && s.Darts.HasMult(dart.MultTriple) {
			s.Shanghai = true
			s.Finish()
		}
		return s
	}

	s.Darts.Push(dart.Outcome{Target: tg.Value()})
	s.Tally.Miss()
	switch s.Pool.Absorb(r.pool) {
	case dart.DrainBurnout:
		if !s.Burnout {
			s.Burnout = true
			s.Malus += malusBurnout
			n := s.Darts.Remaining()
			for range n {
				s.Darts.Push(dart.FillerMiss(0))
			}
			s.Tally.Fill(n)
			s.Phase = dart.RoundFinalizing
		}
	case dart.DrainLastLife:
		if !r.info.Training {
			s.Finish()
		}
	case dart.DrainExhausted, dart.DrainNone:
		s.Malus += malusEmpty
	}
	return s
}

// finalize 燃盡多跳一輪；最後一個目標或超過回合上限即終局。
func (r *rules) finalize(s State) State {
	s.Round++
	if s.Burnout {
		s.Round++
	}
	if s.Index >= len(r.cfg.Targets)-1 || s.Round > r.cfg.Rounds {
		s.Finish()
		return s
	}
	s.Index++
	s.Darts.Reset()
	s.Burnout = false
	s.Phase = dart.Throwing
	return s
}

func (r *rules) current(s State) (dart.Target, bool) {
	if s.Index >= len(r.cfg.Targets) {
		return dart.Target{}, false
	}
	return r.cfg.Targets[s.Index], true
}

func (r *rules) Final(s State) dart.FinalStats {
	final := s.Net()
	won := final >= r.cfg.MinPoints || s.Shanghai
	t := s.Tally
	hitRate := t.HitRate()
	lv := float64(r.info.Level)

	base := 100.0
	if won {
		base = 700 + lv*25
	}
	bonus := float64(t.FirstDartHits*20 + s.ThirdDartHits*40 + t.Doubles*15 + t.Triples*30)
	switch {
	case t.MaxStreak >= 12:
		bonus += 400
	case t.MaxStreak >= 8:
		bonus += 150
	case t.MaxStreak >= 4:
		bonus += 50
	}
	if r.info.Training {
		base = 100
		bonus *= dart.TrainingXPScale
	}

	sr := 0
	if won && !r.info.Training {
		sr = dart.ClampSR(dart.Ratio(final, r.maxPoints)*70 + hitRate*70 + lv*4)
	}

	mode := fmt.Sprintf("Shanghai Level %d", r.info.Level)
	if r.info.Training {
		mode = "Shanghai Training"
	}
	return dart.FinalStats{
		XP:  int(math.Floor(base + bonus)),
		SR:  sr,
		Won: won,
		Stats: dart.TallyFields(t).With(
			dart.F("thirdDartHits", s.ThirdDartHits),
			dart.F("shanghai", s.Shanghai),
			dart.F("finalScore", final),
			dart.F("mode", mode),
		),
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	pool := s.Pool
	v.Pool = &pool
	v.MaxRounds = r.cfg.Rounds
	v.Score = s.Net()
	if tg, ok := r.current(s); ok {
		v.Target = tg.Label()
		v.Targets = dart.Labels([]dart.Target{tg, tg, tg})
	}
	v.Progress = fmt.Sprintf("%d/%d", min(s.Index+1, len(r.cfg.Targets)), len(r.cfg.Targets))
	v.Extra = dart.Fields{dart.F("shanghaiOut", r.cfg.ShanghaiOut)}
	return v
}
