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
	"fmt"
	"math"
	"strconv"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

type State struct {
	dart.Progress
	Index         int // 第幾次嘗試（0 起算）
	Score         int
	RoundsUsed    int
	Checks        int
	Misses        int
	PointsCleared int
	PerfectDarts  int
}

type rules struct {
	cfg     Config
	info    game.Info
	targets []int
}

func newRules(cfg Config, info game.Info, targets []int) *rules {
	return &rules{cfg: cfg, info: info, targets: targets}
}

func (r *rules) initial() State {
	return State{
		Progress: dart.StartProgress(),
		Score:    r.target(0),
	}
}

func (r *rules) target(i int) int {
	if i < 0 || i >= len(r.targets) {
		return 0
	}
	return r.targets[i]
}

func (r *rules) mode(s State) dart.CheckMode {
	return r.cfg.Check.Resolve(r.target(s.Index), r.cfg.SwitchTarget)
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
		s.Phase = dart.RoundFinalizing
	}
	if s.Phase == dart.RoundFinalizing {
		s = r.finalize(s)
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	s.Tally.CountMult(t.Mult)
	n := s.Darts.Len()
	var bust bool
	s.Darts, s.Score, bust = dart.CountdownRound(s.Darts, s.Score, t, r.mode(s))
	s.Tally.TotalDarts += s.Darts.Len() - n
	if !bust && s.Score == 0 {
		// 清零：剩餘鏢位補落空（不計入投擲數），直接結算本輪
		for !s.Darts.Full() {
			s.Darts.Push(dart.FillerMiss(0))
		}
		s.Phase = dart.RoundFinalizing
	}
	return s
}

func (r *rules) finalize(s State) State {
	if s.Score == 0 {
		tg := r.target(s.Index)
		s.Points += checkReward
		s.Checks++
		s.PointsCleared += tg
		s.PerfectDarts += dart.PerfectDarts(tg)
		return r.nextTarget(s)
	}
	s.RoundsUsed++
	if s.RoundsUsed >= r.cfg.Rounds {
		s.Misses++
		if !r.info.Training {
			s.Malus += r.cfg.Malus
		}
		return r.nextTarget(s)
	}
	s.Round++
	s.Darts.Reset()
	s.Phase = dart.Throwing
	return s
}

func (r *rules) nextTarget(s State) State {
	s.Index++
	if s.Index >= r.cfg.Attempts {
		s.Index = r.cfg.Attempts
		s.Finish()
		return s
	}
	s.Score = r.target(s.Index)
	s.RoundsUsed = 0
	s.Round++
	s.Darts.Reset()
	s.Phase = dart.Throwing
	return s
}

func (r *rules) Final(s State) dart.FinalStats {
	net := s.Net()
	t := s.Tally
	attempts := max(1, r.cfg.Attempts)

	sr := 0
	if !r.info.Training {
		raw := dart.Ratio(s.Checks, attempts)*100 +
			dart.Ratio(s.PerfectDarts, max(1, t.TotalDarts))*50 +
			float64(t.Doubles*2)
		ratio := 1.0
		if r.cfg.MinPoints > 0 {
			ratio = math.Max(0, float64(net)/float64(r.cfg.MinPoints))
		}
		sr = dart.ClampSR(raw * ratio)
	}

	base := 700 + float64(r.info.Level*20)
	bonus := 0.0
	won := net >= r.cfg.MinPoints
	if won {
		bonus = base*0.5 + dart.Ratio(s.Checks, attempts)*base*0.3
	} else {
		base = 250
	}

	mode := fmt.Sprintf("Checkout Lvl %d", r.info.Level)
	if r.info.Training {
		mode = "Checkout Training"
	}
	return dart.FinalStats{
		XP:  dart.ScaleXP(base+bonus, r.info.Training),
		SR:  sr,
		Won: won,
		Stats: dart.Fields{
			dart.F("totalDarts", t.TotalDarts),
			dart.F("hits", s.Checks),
			dart.F("misses", s.Misses),
			dart.F("doubles", t.Doubles),
			dart.F("triples", t.Triples),
			dart.F("pointsCleared", s.PointsCleared),
			dart.F("perfectDartsNeeded", s.PerfectDarts),
			dart.F("finalPoints", net),
			dart.F("finalScore", net),
			dart.F("mode", mode),
		},
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	v.MaxRounds = r.cfg.Rounds
	v.Score = s.Score
	if tg := r.target(s.Index); tg > 0 {
		v.Target = strconv.Itoa(tg)
	}
	v.Progress = fmt.Sprintf("%d/%d", s.Index, r.cfg.Attempts)
	v.Extra = dart.Fields{
		dart.F("checkMode", string(r.mode(s))),
		dart.F("roundsUsed", s.RoundsUsed),
		dart.F("range", r.cfg.Label()),
		dart.F("checks", s.Checks),
	}
	return v
}
