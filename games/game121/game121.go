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
	"fmt"
	"math"
	"strconv"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

type State struct {
	dart.Progress
	Score         int // 本輪倒數中的分數
	Target        int // 目前要清掉的數字
	RoundsUsed    int
	TargetsPlayed int
	Checks        int
	PerfectDarts  int
	T20FirstDart  int
	T19FirstDart  int
}

type rules struct {
	cfg  Config
	info game.Info
}

// mode 以目前的數字解析出生效的收鏢規則。
func (r *rules) mode(s State) dart.CheckMode {
	return r.cfg.Check.Resolve(s.Target, r.cfg.SwitchTarget)
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
		if s.Phase == dart.Throwing {
			s = r.finishRound(s, false)
		}
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	s.Tally.CountMult(t.Mult)
	if s.Darts.Empty() && t.Mult == dart.MultTriple {
		switch t.Value {
		case 20:
			s.T20FirstDart++
		case 19:
			s.T19FirstDart++
		}
	}

	n := s.Darts.Len()
	var bust bool
	s.Darts, s.Score, bust = dart.CountdownRound(s.Darts, s.Score, t, r.mode(s))
	// 爆鏢的佔位鏢也算投擲數
	s.Tally.TotalDarts += s.Darts.Len() - n
	if bust || s.Score != 0 {
		return s
	}
	return r.checked(s)
}

// checked 清零：+10、數字往上加、本輪剩餘鏢位以佔位補滿並立即換輪。
func (r *rules) checked(s State) State {
	s.Points += checkReward
	s.Checks++
	s.TargetsPlayed++
	s.PerfectDarts += dart.PerfectDarts(s.Target)
	switch {
	case r.info.Training, r.info.Level >= 10:
		s.Target++
	default:
		s.Target += 5
	}
	s.RoundsUsed = -1
	for !s.Darts.Full() {
		s.Darts.Push(dart.FillerMiss(0))
	}
	if s.TargetsPlayed >= r.cfg.TotalTargets {
		s.Finish()
	}
	return r.finishRound(s, true)
}

func (r *rules) finishRound(s State, checked bool) State {
	if !s.Finished() {
		s.Phase = dart.RoundFinalizing
	}
	s.RoundsUsed++
	if !checked && s.RoundsUsed >= r.cfg.Rounds {
		s = r.failTarget(s)
	}
	if s.Finished() {
		return s
	}
	s.Round++
	s.Darts.Reset()
	if checked || s.RoundsUsed == 0 {
		s.Score = s.Target
	}
	s.Phase = dart.Throwing
	return s
}

func (r *rules) failTarget(s State) State {
	if !r.info.Training {
		s.Malus += r.cfg.Malus
	}
	s.TargetsPlayed++
	if r.cfg.reset() {
		s.Target = r.cfg.Start
	}
	if s.TargetsPlayed >= r.cfg.TotalTargets {
		s.Finish()
		return s
	}
	s.RoundsUsed = 0
	s.Score = s.Target
	return s
}

func (r *rules) Final(s State) dart.FinalStats {
	net := s.Net()
	t := s.Tally

	sr := 0
	if !r.info.Training {
		raw := float64(s.PerfectDarts) / float64(max(1, t.TotalDarts)) * 100
		raw += float64(t.Doubles*2 + t.Triples)
		raw += float64(s.T20FirstDart*5 + s.T19FirstDart*5)
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
		bonus = base*0.5 + dart.Ratio(s.Checks, max(1, r.cfg.TotalTargets))*base*0.3
	} else {
		base = 200
	}

	mode := fmt.Sprintf("121 Level %d", r.info.Level)
	if r.info.Training {
		mode = "121 Training"
	}
	return dart.FinalStats{
		XP:  dart.ScaleXP(base+bonus, r.info.Training),
		SR:  sr,
		Won: won,
		Stats: dart.Fields{
			dart.F("checks", s.Checks),
			dart.F("totalDarts", t.TotalDarts),
			dart.F("doubles", t.Doubles),
			dart.F("triples", t.Triples),
			dart.F("t20FirstDart", s.T20FirstDart),
			dart.F("t19FirstDart", s.T19FirstDart),
			dart.F("perfectDartsNeeded", s.PerfectDarts),
			dart.F("finalPoints", net),
			dart.F("mode", mode),
		},
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	v.MaxRounds = r.cfg.Rounds
	v.Score = s.Score
	v.Target = strconv.Itoa(s.Target)
	v.Progress = fmt.Sprintf("%d/%d", s.TargetsPlayed, r.cfg.TotalTargets)
	v.Extra = dart.Fields{
		dart.F("checkMode", string(r.mode(s))),
		dart.F("roundsUsed", max(0, s.RoundsUsed)),
		dart.F("startTarget", r.cfg.Start),
		dart.F("checks", s.Checks),
	}
	if r.cfg.MinTargetToReach > 0 {
		v.Extra = v.Extra.With(dart.F("minTargetToReach", r.cfg.MinTargetToReach))
	}
	return v
}
