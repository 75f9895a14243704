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

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetKind 目標種類。
type TargetKind uint8

const (
	// Number 指定區塊，任何倍率都算命中。
	Number TargetKind = iota
	// AnyDouble 任一雙倍區。
	AnyDouble
	// AnyTriple 任一三倍區。
	AnyTriple
	// Bullseye 牛眼（外圈或內圈）。
	Bullseye
	// SpecificDouble 指定區塊的雙倍。
	SpecificDouble
	// SpecificTriple 指定區塊的三倍。
	SpecificTriple
)

// Target 目標序列的一個元素。
//
// 設定檔中的寫法：
//
//	12   → Number(12)
//	25   → Number(25)，顯示為 BULL
//	D    → AnyDouble
//	T    → AnyTriple
//	B    → Bullseye
//	D18  → SpecificDouble(18)
//	T15  → SpecificTriple(15)
type Target struct {
	Kind TargetKind
	N    int
}

func Num(n int) Target        { return Target{Kind: Number, N: n} }
func Double(n int) Target     { return Target{Kind: SpecificDouble, N: n} }
func Triple(n int) Target     { return Target{Kind: SpecificTriple, N: n} }
func AnyDoubleTarget() Target { return Target{Kind: AnyDouble} }
func AnyTripleTarget() Target { return Target{Kind: AnyTriple} }
func BullseyeTarget() Target  { return Target{Kind: Bullseye} }

// Nums 一串 Number 目標。
func Nums(ns ...int) []Target { return numsOf(ns) }

// Span [from,to] 的 Number 目標。
func Span(from, to int) []Target { return numsOf(seq(from, to)) }

func numsOf(ns []int) []Target {
	out := make([]Target, len(ns))
	for i, n := range ns {
		out[i] = Num(n)
	}
	return out
}

func seq(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Hits 以倍率判斷是否命中（目標隱含在序列中，不看區塊值）。
func (t Target) Hits(mult int) bool {
	switch t.Kind {
	case AnyDouble, SpecificDouble:
		return mult == MultDouble
	case AnyTriple, SpecificTriple:
		return mult == MultTriple
	default:
		return mult > MultMiss
	}
}

// Score 命中時的得分：符號目標（D / T / B）以 25 計，其餘以區塊值計。
func (t Target) Score(mult int) int {
	switch t.Kind {
	case AnyDouble, AnyTriple, Bullseye:
		return Bull * mult
	default:
		return t.N * mult
	}
}

// Value 區塊值；符號目標回傳 Bull。
func (t Target) Value() int {
	switch t.Kind {
	case AnyDouble, AnyTriple, Bullseye:
		return Bull
	default:
		return t.N
	}
}

// Label 顯示用文字。
func (t Target) Label() string {
	switch t.Kind {
	case AnyDouble:
		return "Double (Any)"
	case AnyTriple:
		return "Triple (Any)"
	case Bullseye:
		return "Bullseye"
	case SpecificDouble:
		return "D" + strconv.Itoa(t.N)
	case SpecificTriple:
		return "T" + strconv.Itoa(t.N)
	default:
		if t.N == Bull {
			return "BULL"
		}
		return strconv.Itoa(t.N)
	}
}

// String 設定檔寫法。
func (t Target) String() string {
	switch t.Kind {
	case AnyDouble:
		return "D"
	case AnyTriple:
		return "T"
	case Bullseye:
		return "B"
	case SpecificDouble:
		return "D" + strconv.Itoa(t.N)
	case SpecificTriple:
		return "T" + strconv.Itoa(t.N)
	default:
		return strconv.Itoa(t.N)
	}
}

// ParseTarget 解析設定檔寫法。
func ParseTarget(s string) (Target, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "D":
		return AnyDoubleTarget(), nil
	case "T":
		return AnyTripleTarget(), nil
	case "B", "BULL":
		return BullseyeTarget(), nil
	case "":
		return Target{}, fmt.Errorf("empty target")
	}
	kind := Number
	switch s[0] {
	case 'D':
		kind, s = SpecificDouble, s[1:]
	case 'T':
		kind, s = SpecificTriple, s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Target{}, fmt.Errorf("invalid target %q", s)
	}
	if n < 1 || (n > 20 && n != Bull) {
		return Target{}, fmt.Errorf("target out of board: %d", n)
	}
	if kind == SpecificTriple && n == Bull {
		return Target{}, fmt.Errorf("bull has no triple")
	}
	return Target{Kind: kind, N: n}, nil
}

// MarshalText 讓 YAML / JSON 以設定檔寫法輸出。
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText 讓 YAML / JSON 以設定檔寫法讀入。
func (t *Target) UnmarshalText(b []byte) error {
	v, err := ParseTarget(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Labels 一串目標的顯示文字。
func Labels(ts []Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Label()
	}
	return out
}
