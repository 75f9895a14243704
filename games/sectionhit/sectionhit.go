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
	"fmt"
	"math"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

type State struct {
	dart.Progress
	Pool              dart.Pool
	Index             int
	HitsOnTarget      int
	CompletedSections int
}

type rules struct {
	cfg  Config
	info game.Info
	pool dart.PoolRule
}

func (r *rules) Reduce(s State, ev dart.Event) State {
	if s.Finished() {
		return s
	}
	switch ev.Kind {
	case dart.EvThrow:
		if !s.Darts.Full() {
			s = r.throw(s, ev.Throw)
		}
	case dart.EvNextRound:
		// 未丟的鏢補成落空照常結算，補到終局就停
		for !s.Finished() && !s.Darts.Full() {
			s = r.throw(s, dart.Miss())
		}
		if s.Finished() {
			return s
		}
		s.Phase = dart.RoundFinalizing
		s.Round++
		s.Darts.Reset()
		if s.Round > r.cfg.Rounds {
			s.Finish()
		} else {
			s.Phase = dart.Throwing
		}
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	first := s.Darts.Empty()
	tg := r.cfg.Targets[s.Index]
	if tg.Hits(t.Mult) {
		s.Darts.Push(dart.Outcome{Value: tg.Value(), Mult: t.Mult, Points: t.Mult, Hit: true, Target: tg.Value()})
		s.Tally.Hit(t.Mult, first)
		s.Points += t.Mult
		s.HitsOnTarget++
		s.Pool.Regen(r.pool)
	} else {
		s.Darts.Push(dart.Outcome{Target: tg.Value()})
		s.Tally.Miss()
		switch s.Pool.Absorb(r.pool) {
		case dart.DrainLife:
			s.Malus += malusLife
		case dart.DrainLastLife:
			s.Malus += malusLife
			if !r.info.Training {
				s.Finish()
			}
		case dart.DrainExhausted, dart.DrainNone:
			s.Malus += malusNoLife
		}
	}

	if s.HitsOnTarget >= r.cfg.RequiredHits {
		s.CompletedSections++
		s.Index++
		s.HitsOnTarget = 0
		if s.Index >= len(r.cfg.Targets) {
			s.Finish()
		}
	}
	return s
}

// currentTargets 依剩餘所需命中數重複目標，湊滿三鏢。
func (r *rules) currentTargets(s State) []dart.Target {
	if s.Finished() {
		return nil
	}
	out := make([]dart.Target, 0, dart.DartsPerRound)
	idx, hits := s.Index, s.HitsOnTarget
	for len(out) < dart.DartsPerRound && idx < len(r.cfg.Targets) {
		n := min(r.cfg.RequiredHits-hits, dart.DartsPerRound-len(out))
		for range n {
			out = append(out, r.cfg.Targets[idx])
		}
		idx++
		hits = 0
	}
	return out
}

func (r *rules) Final(s State) dart.FinalStats {
	net := max(0, s.Net())
	cleared := s.Index >= len(r.cfg.Targets)
	won := cleared && net >= r.cfg.MinPoints && s.Round <= r.cfg.Rounds

	if r.info.Training {
		return dart.FinalStats{
			XP:  s.Tally.Hits * 4,
			SR:  0,
			Won: true,
			Stats: dart.TallyFields(s.Tally).With(
				dart.F("completedSections", s.CompletedSections),
				dart.F("finalScore", net),
				dart.F("mode", "Section Hit Training"),
			),
		}
	}

	lv := float64(r.info.Level)
	base := 100.0
	if won {
		base = 700 + lv*50
	}
	t := s.Tally
	xp := base + float64(t.MaxStreak*25) + float64(t.Triples*50+t.Doubles*25) + float64(t.FirstDartHits*15) - float64(s.Malus*5)
	xp = math.Max(100, xp)

	sr := 0
	if won {
		hitRate := float64(t.Hits) / float64(max(1, t.TotalDarts))
		rounds := float64(r.cfg.Rounds)
		speed := math.Max(0, (rounds-float64(s.Round))/rounds)
		sr = dart.ClampSR(100 + hitRate*50 + speed*30)
	}

	return dart.FinalStats{
		XP:  int(math.Floor(xp)),
		SR:  sr,
		Won: won,
		Stats: dart.TallyFields(t).With(
			dart.F("completedSections", s.CompletedSections),
			dart.F("points", s.Points),
			dart.F("malus", s.Malus),
			dart.F("finalScore", net),
			dart.F("completed", fmt.Sprintf("%d/%d", s.Index, len(r.cfg.Targets))),
			dart.F("mode", fmt.Sprintf("Section Hit Lvl %d", r.info.Level)),
		),
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	pool := s.Pool
	v.Pool = &pool
	v.MaxRounds = r.cfg.Rounds
	v.Score = max(0, s.Net())
	v.Target = "DONE"
	if !s.Finished() && s.Index < len(r.cfg.Targets) {
		v.Target = r.cfg.Targets[s.Index].Label()
	}
	v.Targets = dart.Labels(r.currentTargets(s))
	v.Progress = fmt.Sprintf("%d/%d", s.Index, len(r.cfg.Targets))
	v.Extra = dart.Fields{
		dart.F("hitsOnTarget", s.HitsOnTarget),
		dart.F("requiredHits", r.cfg.RequiredHits),
	}
	return v
}
