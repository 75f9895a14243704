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

// Bull 外圈 25，內圈以 (25, 2) 表示。
const Bull = 25

// 倍率
const (
	MultMiss   = 0
	MultSingle = 1
	MultDouble = 2
	MultTriple = 3
)

// DartsPerRound 每輪固定三鏢。
const DartsPerRound = 3

// Throw 一鏢的輸入。
//
// 固定目標序列的遊戲（ATC / Section Hit / Shanghai / Bermuda）只看 Mult，Value 會被忽略；
// 鍵盤輸入的遊戲（121 / Checkout / X01 / Warmup）兩者都看。
type Throw struct {
	Value int `json:"value"`
	Mult  int `json:"mult"`
}

// Miss 回傳一鏢落空。
func Miss() Throw { return Throw{} }

// NewThrow 建立並正規化一鏢。
func NewThrow(value, mult int) Throw {
	return Throw{Value: value, Mult: mult}.Normalize()
}

// Normalize 將不合法的輸入收斂到安全值，不回傳錯誤：
//   - 倍率不在 0..3 → 視為 1
//   - 區塊不在 {0, 1..20, 25} → 視為落空
//   - Bull 沒有三倍 → 視為內圈 (25, 2)
//   - Value 0 或 Mult 0 → 統一為 (0, 0)
func (t Throw) Normalize() Throw {
	if t.Mult < MultMiss || t.Mult > MultTriple {
		t.Mult = MultSingle
	}
	if !ValidSector(t.Value) {
		return Throw{}
	}
	if t.Value == Bull && t.Mult == MultTriple {
		t.Mult = MultDouble
	}
	if t.Value == 0 || t.Mult == MultMiss {
		return Throw{}
	}
	return t
}

// Points 鍵盤模式下這一鏢的分數。
func (t Throw) Points() int { return t.Value * t.Mult }

// Landed 有沒有打在板上（倍率 > 0）。
func (t Throw) Landed() bool { return t.Mult > MultMiss }

// ValidSector 0 代表落空。
func ValidSector(v int) bool {
	return v == 0 || v == Bull || (v >= 1 && v <= 20)
}

// NormalizeMult 固定目標序列遊戲的倍率正規化。
func NormalizeMult(mult int) int {
	if mult < MultMiss || mult > MultTriple {
		return MultSingle
	}
	return mult
}

// Outcome 記錄在回合緩衝中的一鏢結果。
type Outcome struct {
	Value       int  `json:"value"`
	Mult        int  `json:"mult"`
	Points      int  `json:"points"`
	Hit         bool `json:"hit"`
	Bust        bool `json:"bust,omitempty"`
	Filler      bool `json:"filler,omitempty"`
	ScoreBefore int  `json:"score_before,omitempty"`
	Target      int  `json:"target,omitempty"`
}

// FillerMiss 自動補上的落空鏢。
func FillerMiss(scoreBefore int) Outcome {
	return Outcome{Filler: true, ScoreBefore: scoreBefore}
}

// FillerBust 爆鏢後補上的佔位鏢。
func FillerBust(scoreBefore int) Outcome {
	return Outcome{Filler: true, Bust: true, ScoreBefore: scoreBefore}
}
