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

package atc

import (
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// State 一場 ATC 的完整狀態，以值複製作為 undo 快照。
type State struct {
	dart.Progress
	Pool            dart.Pool
	Index           int // 目前目標
	HitsOnTarget    int
	RoundStartIndex int
	RoundStartHits  int
	Burnout         bool // 本輪已燃盡
}

type rules struct {
	cfg  Config
	info game.Info
	pool dart.PoolRule
}

func newRules(cfg Config, info game.Info) *rules {
	return &rules{cfg: cfg, info: info, pool: cfg.pool()}
}

func (r *rules) initial() State {
	return State{
		Progress: dart.StartProgress(),
		Pool:     dart.NewPool(r.pool),
	}
}

// Reduce 純函數：s 以值傳入，回傳新狀態。
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
		// 補上的落空照常結算（扣能量、可能燃盡或終局）
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

func (r *rules) current(s State) dart.Target {
	return r.cfg.Targets[min(s.Index, len(r.cfg.Targets)-1)]
}

func (r *rules) throw(s State, t dart.Throw) State {
	first := s.Darts.Empty()
	tg := r.current(s)
	if tg.Hits(t.Mult) {
		pts := tg.Score(t.Mult)
		s.Darts.Push(dart.Outcome{Value: tg.Value(), Mult: t.Mult, Points: pts, Hit: true, Target: tg.Value()})
		s.Tally.Hit(t.Mult, first)
		s.Points += pts
		s.Pool.Regen(r.pool)
		s.HitsOnTarget++
		if s.HitsOnTarget >= r.cfg.HitsPerTarget {
			s.HitsOnTarget = 0
			s.Index++
			if s.Index >= len(r.cfg.Targets) {
				s.Finish()
			}
		}
		return s
	}

	s.Darts.Push(dart.Outcome{Target: tg.Value()})
	s.Tally.Miss()
	switch s.Pool.Absorb(r.pool) {
	case dart.DrainBurnout:
		if !s.Burnout {
			s = burnout(s)
		}
	case dart.DrainLife:
		s.Malus += malusLife
	case dart.DrainLastLife:
		s.Malus += malusLife
		if !r.info.Training {
			s.Finish()
		}
	case dart.DrainExhausted:
		s.Malus += malusNoLife
	case dart.DrainNone:
		s.Malus += malusNoSystems
	}
	return s
}

// burnout 補滿本輪並進入 RoundFinalizing，換輪時多跳一輪。
func burnout(s State) State {
	s.Burnout = true
	n := s.Darts.Remaining()
	for range n {
		s.Darts.Push(dart.FillerMiss(0))
	}
	s.Tally.Fill(n)
	s.Phase = dart.RoundFinalizing
	return s
}

func (r *rules) finalize(s State) State {
	// 先檢查回合上限再遞增
	if s.Round >= r.cfg.Rounds {
		s.Finish()
	} else {
		s.Round++
		if s.Burnout {
			s.Round++
		}
	}
	s.Darts.Reset()
	s.Burnout = false
	s.RoundStartIndex = s.Index
	s.RoundStartHits = s.HitsOnTarget

	if s.Round > r.cfg.Rounds {
		s.Round = r.cfg.Rounds
		s.Finish()
	}
	if !s.Finished() {
		s.Phase = dart.Throwing
	}
	return s
}

// currentTargets 本輪三鏢的預期目標：已丟的鏢依實際結果推進，未丟的鏢假設命中。
func (r *rules) currentTargets(s State) []dart.Target {
	out := make([]dart.Target, 0, dart.DartsPerRound)
	idx, hits := s.RoundStartIndex, s.RoundStartHits
	for i := range dart.DartsPerRound {
		if idx < len(r.cfg.Targets) {
			out = append(out, r.cfg.Targets[idx])
		}
		if i < s.Darts.Len() && !s.Darts.At(i).Hit {
			continue
		}
		hits++
		if hits >= r.cfg.HitsPerTarget {
			idx++
			hits = 0
		}
	}
	return out
}
