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

package dart

// Phase 回合狀態機。
//
//	Throwing ──(第三鏢 / NextRound / 爆鏢 / 燃盡)──▶ RoundFinalizing ──▶ Throwing
//	    │                                                   │
//	    └──────────────────(終局條件)─────────────────────▶ Finished
//
// RoundFinalizing 只存在於單次 Reduce 之內：燃盡觸發的強制換輪是一個明確的轉移，
// 不會遞迴呼叫 NextRound。
type Phase uint8

const (
	Throwing Phase = iota
	RoundFinalizing
	Finished
)

func (p Phase) String() string {
	switch p {
	case Throwing:
		return "throwing"
	case RoundFinalizing:
		return "round_finalizing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Round 本輪的鏢緩衝，長度永遠在 [0,3]。
// 使用固定陣列，讓整個 State 可以直接以值複製作為快照。
type Round struct {
	darts [DartsPerRound]Outcome
	n     int
}

func (r Round) Len() int    { return r.n }
func (r Round) Full() bool  { return r.n >= DartsPerRound }
func (r Round) Empty() bool { return r.n == 0 }

// Push 緩衝已滿時回傳 false，不做任何事。
func (r *Round) Push(o Outcome) bool {
	if r.n >= DartsPerRound {
		return false
	}
	r.darts[r.n] = o
	r.n++
	return true
}

// At 第 i 鏢（0-based），越界回傳零值。
func (r Round) At(i int) Outcome {
	if i < 0 || i >= r.n {
		return Outcome{}
	}
	return r.darts[i]
}

// Last 最後一鏢。
func (r Round) Last() (Outcome, bool) {
	if r.n == 0 {
		return Outcome{}, false
	}
	return r.darts[r.n-1], true
}

// Darts 回傳副本。
func (r Round) Darts() []Outcome {
	out := make([]Outcome, r.n)
	copy(out, r.darts[:r.n])
	return out
}

// Remaining 本輪還能丟幾鏢。
func (r Round) Remaining() int { return DartsPerRound - r.n }

// HasMult 本輪是否出現過指定倍率的命中。
func (r Round) HasMult(mult int) bool {
	for i := 0; i < r.n; i++ {
		if r.darts[i].Hit && r.darts[i].Mult == mult {
			return true
		}
	}
	return false
}

// Hits 本輪命中數。
func (r Round) Hits() int {
	c := 0
	for i := 0; i < r.n; i++ {
		if r.darts[i].Hit {
			c++
		}
	}
	return c
}

// PointsSum 本輪 Outcome.Points 加總。
func (r Round) PointsSum() int {
	s := 0
	for i := 0; i < r.n; i++ {
		s += r.darts[i].Points
	}
	return s
}

// Reset 清空緩衝。
func (r *Round) Reset() { *r = Round{} }

// Tally 各引擎共用的統計累加器。
type Tally struct {
	TotalDarts    int
	Hits          int
	Misses        int
	Singles       int
	Doubles       int
	Triples       int
	Streak        int
	MaxStreak     int
	FirstDartHits int
}

// Hit 記一次命中。
func (t *Tally) Hit(mult int, firstDart bool) {
	t.TotalDarts++
	t.Hits++
	t.Streak++
	t.MaxStreak = max(t.MaxStreak, t.Streak)
	t.CountMult(mult)
	if firstDart {
		t.FirstDartHits++
	}
}

// Miss 記一次落空。
func (t *Tally) Miss() {
	t.TotalDarts++
	t.Misses++
	t.Streak = 0
}

// Fill 記 n 支自動補上的落空鏢。
func (t *Tally) Fill(n int) {
	if n <= 0 {
		return
	}
	t.TotalDarts += n
	t.Misses += n
	t.Streak = 0
}

// CountMult 只累計倍率分佈。
func (t *Tally) CountMult(mult int) {
	switch mult {
	case MultSingle:
		t.Singles++
	case MultDouble:
		t.Doubles++
	case MultTriple:
		t.Triples++
	}
}

// HitRate hits / totalDarts，沒丟過回傳 0。
func (t Tally) HitRate() float64 {
	if t.TotalDarts == 0 {
		return 0
	}
	return float64(t.Hits) / float64(t.TotalDarts)
}

// Progress 所有引擎 State 共有的部分。
//
// 每個引擎的 State 以值嵌入 Progress；History 直接保存整個 State 值，
// 新增欄位不需要改快照程式碼。
type Progress struct {
	Phase  Phase
	Round  int
	Points int
	Malus  int
	Darts  Round
	Tally  Tally
}

// Base 讓 sdk/game.Machine 以泛型約束讀取共用欄位。
func (p Progress) Base() Progress { return p }

func (p Progress) Finished() bool { return p.Phase == Finished }

// Net points - malus
func (p Progress) Net() int { return p.Points - p.Malus }

// Finish 進入終局。
func (p *Progress) Finish() { p.Phase = Finished }

// StartProgress 第一輪、投擲中。
func StartProgress() Progress {
	return Progress{Phase: Throwing, Round: 1}
}
