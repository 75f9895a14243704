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

import "strings"

// CheckMode 收鏢規則。
type CheckMode string

const (
	SingleOut CheckMode = "single"
	DoubleOut CheckMode = "double"
	// Hybrid 目標 >= 切換值時為 DoubleOut，否則 SingleOut。
	Hybrid CheckMode = "single-double"
)

// ParseCheckMode 無法辨識時回傳 def。
func ParseCheckMode(s string, def CheckMode) CheckMode {
	switch CheckMode(strings.ToLower(strings.TrimSpace(s))) {
	case SingleOut:
		return SingleOut
	case DoubleOut:
		return DoubleOut
	case Hybrid:
		return Hybrid
	default:
		return def
	}
}

// Valid 是否為已知規則。
func (m CheckMode) Valid() bool {
	return m == SingleOut || m == DoubleOut || m == Hybrid
}

// Resolve 以目前目標數解析出實際生效的規則。
func (m CheckMode) Resolve(target, switchAt int) CheckMode {
	if m != Hybrid {
		return m
	}
	if target >= switchAt {
		return DoubleOut
	}
	return SingleOut
}

// IsBust 判斷一鏢是否爆鏢。mode 必須是已解析的規則（不可為 Hybrid）。
//
//   - 分數變成負數
//   - DoubleOut 下剩 1
//   - DoubleOut 下歸零但不是雙倍（內圈 Bull 為 (25,2)，算雙倍）
func IsBust(after int, t Throw, mode CheckMode) bool {
	if after < 0 {
		return true
	}
	if mode != DoubleOut {
		return false
	}
	if after == 1 {
		return true
	}
	return after == 0 && t.Mult != MultDouble
}

// CountdownRound 倒數類遊戲的單鏢結算。
//
// 回傳新的回合緩衝與本鏢後的分數。爆鏢時分數回到回合起始值，其餘鏢位以爆鏢佔位補滿。
func CountdownRound(r Round, score int, t Throw, mode CheckMode) (Round, int, bool) {
	before := score
	after := score - t.Points()
	if IsBust(after, t, mode) {
		start := RoundStartScore(r, before)
		r.Push(Outcome{Value: t.Value, Mult: t.Mult, Bust: true, ScoreBefore: before})
		for !r.Full() {
			r.Push(FillerBust(start))
		}
		return r, start, true
	}
	r.Push(Outcome{Value: t.Value, Mult: t.Mult, Points: t.Points(), Hit: t.Landed(), ScoreBefore: before})
	return r, after, false
}

// RoundStartScore 本輪第一鏢之前的分數；空緩衝回傳 current。
func RoundStartScore(r Round, current int) int {
	if r.Empty() {
		return current
	}
	return r.At(0).ScoreBefore
}

// PerfectDarts 清掉 target 理論上最少需要的鏢數（每鏢最多約 30 分計）。
func PerfectDarts(target int) int {
	if target <= 0 {
		return 0
	}
	return (target + 29) / 30
}
