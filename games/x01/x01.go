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

package x01

import (
	"fmt"
	"strconv"

	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// sectors 分佈統計的列：0..20 與 25。
const sectors = 22

const (
	first9Darts      = 9
	checkoutMaxScore = 50
	xpPer180         = 150
)

type State struct {
	dart.Progress
	Score            int
	Opened           bool // double in 已開分
	RealDarts        int  // 實際投出的鏢數（不含佔位）
	LastVisit        int
	First9Points     int
	HundredPlus      int
	OneFortyPlus     int
	OneEighty        int
	HighestVisit     int
	CheckoutAttempts int
	Dist             [sectors][dart.DartsPerRound]int
}

type rules struct {
	cfg  Config
	info game.Info
}

func (r *rules) initial() State {
	return State{
		Progress: dart.StartProgress(),
		Score:    r.cfg.Start,
		Opened:   !r.cfg.DoubleIn,
	}
}

func sectorRow(v int) int {
	switch {
	case v == dart.Bull:
		return sectors - 1
	case v < 0 || v > 20:
		return 0
	}
	return v
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
			s.Darts.Push(dart.FillerMiss(s.Score))
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
	raw := t.Points()
	if s.RealDarts < first9Darts {
		s.First9Points += raw
	}
	s.RealDarts++
	s.Tally.TotalDarts++
	s.Tally.CountMult(t.Mult)
	s.Dist[sectorRow(t.Value)][idx]++
	if r.cfg.DoubleOut && s.Score <= checkoutMaxScore && s.Score%2 == 0 {
		s.CheckoutAttempts++
	}

	pts := raw
	if !s.Opened {
		if t.Mult == dart.MultDouble {
			s.Opened = true
		} else {
			pts = 0
		}
	}

	before := s.Score
	after := before - pts
	if dart.IsBust(after, t, r.cfg.mode()) {
		start := dart.RoundStartScore(s.Darts, before)
		s.Darts.Push(dart.Outcome{Value: t.Value, Mult: t.Mult, Bust: true, ScoreBefore: before})
		for !s.Darts.Full() {
			s.Darts.Push(dart.FillerBust(start))
		}
		s.Score = start
		return s
	}
	s.Darts.Push(dart.Outcome{Value: t.Value, Mult: t.Mult, Points: pts, Hit: pts > 0, ScoreBefore: before})
	s.Score = after
	if s.Score == 0 {
		for !s.Darts.Full() {
			s.Darts.Push(dart.FillerMiss(0))
		}
		s.Phase = dart.RoundFinalizing
	}
	return s
}

// finalize 記錄本輪 visit 統計；清零時結束比賽。
func (r *rules) finalize(s State) State {
	visit := dart.RoundStartScore(s.Darts, s.Score) - s.Score
	s.LastVisit = visit
	switch {
	case visit >= 180:
		s.OneEighty++
	case visit >= 140:
		s.OneFortyPlus++
	case visit >= 100:
		s.HundredPlus++
	}
	s.HighestVisit = max(s.HighestVisit, visit)
	if s.Score == 0 {
		s.Finish()
		return s
	}
	s.Round++
	s.Darts.Reset()
	s.Phase = dart.Throwing
	return s
}

// points 目前已清掉的分數（爆鏢的回合不算）。
func (r *rules) points(s State) int { return r.cfg.Start - s.Score }

// average 三鏢平均。
func (r *rules) average(s State) float64 {
	return float64(r.points(s)) / float64(max(1, s.RealDarts)) * dart.DartsPerRound
}

func (r *rules) Final(s State) dart.FinalStats {
	avg := r.average(s)
	sr := 0
	if !r.info.Training {
		sr = dart.ClampSR(avg)
	}
	xp := float64(r.cfg.Start)/2 + float64(s.OneEighty*xpPer180)
	return dart.FinalStats{
		XP:  dart.ScaleXP(xp, r.info.Training),
		SR:  sr,
		Won: s.Score == 0,
		Stats: dart.Fields{
			dart.F("mode", fmt.Sprintf("X01 %d", r.cfg.Start)),
			dart.F("points", r.points(s)),
			dart.F("avg", strconv.FormatFloat(avg, 'f', 1, 64)),
			dart.F("darts", s.RealDarts),
			dart.F("180s", s.OneEighty),
			dart.F("140+", s.OneFortyPlus),
			dart.F("100+", s.HundredPlus),
			dart.F("highestVisit", s.HighestVisit),
			dart.F("first9Points", s.First9Points),
			dart.F("checkoutAttempts", s.CheckoutAttempts),
			dart.F("singles", s.Tally.Singles),
			dart.F("doubles", s.Tally.Doubles),
			dart.F("triples", s.Tally.Triples),
			dart.F("distribution", r.distribution(s)),
		},
	}
}

// distribution 只輸出有被打到的區塊，key 為區塊數字。
func (r *rules) distribution(s State) map[string][dart.DartsPerRound]int {
	out := make(map[string][dart.DartsPerRound]int)
	for row, slots := range s.Dist {
		if slots == ([dart.DartsPerRound]int{}) {
			continue
		}
		v := row
		if row == sectors-1 {
			v = dart.Bull
		}
		out[strconv.Itoa(v)] = slots
	}
	return out
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	v.Score = s.Score
	v.Target = strconv.Itoa(s.Score)
	v.Extra = dart.Fields{
		dart.F("startScore", r.cfg.Start),
		dart.F("doubleOut", r.cfg.DoubleOut),
		dart.F("doubleIn", r.cfg.DoubleIn),
		dart.F("opened", s.Opened),
		dart.F("avg", strconv.FormatFloat(r.average(s), 'f', 1, 64)),
		dart.F("lastVisit", s.LastVisit),
	}
	return v
}
