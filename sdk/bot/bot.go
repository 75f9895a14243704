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

// Package bot 模擬器用的機器人玩家。
//
// 每一鏢分兩步：先依目前畫面決定瞄準點（Aim），再依技術值從 alias table 抽出落點類別。
// 所有亂數都來自注入的 core.Core，同樣的 seed 會打出同樣的一場比賽。
package bot

import (
	"strings"

	"github.com/zintix-labs/dartlab/sdk/core"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/sdk/sampler"
)

// DefaultMaxRounds 一場比賽最多打幾輪；超過視為放棄（例如永遠 checkout 不了的 X01）。
const DefaultMaxRounds = 120

// 落點類別
const (
	clsMiss = iota
	clsNeighbour
	clsSingle
	clsDouble
	clsTriple
	numClasses
)

// 瞄準種類
const (
	aimSingle = iota
	aimDouble
	aimTriple
	aimBull
	numAims
)

// boardOrder 鏢靶上區塊的排列，用來找鄰區。
var boardOrder = [20]int{20, 1, 18, 4, 13, 6, 10, 15, 2, 17, 3, 19, 7, 16, 8, 11, 14, 9, 12, 5}

var boardIndex = func() [21]int {
	var idx [21]int
	for i, v := range boardOrder {
		idx[v] = i
	}
	return idx
}()

// Aim 瞄準點。Value 為 25 時 Mult 1 是外圈、2 是內圈。
type Aim struct {
	Value int
	Mult  int
}

func (a Aim) kind() int {
	switch {
	case a.Value == dart.Bull:
		return aimBull
	case a.Mult == dart.MultTriple:
		return aimTriple
	case a.Mult == dart.MultDouble:
		return aimDouble
	default:
		return aimSingle
	}
}

// Bot 固定技術值的機器人。不保證併發安全，每個 worker 一個。
type Bot struct {
	skill  float64
	c      *core.Core
	tables [numAims]*sampler.AliasTable
}

// New 技術值夾在 [0,1]：0 幾乎只會打單倍，1 接近職業選手。
func New(skill float64, seed int64) *Bot {
	skill = min(1, max(0, skill))
	b := &Bot{skill: skill, c: core.NewWithSeed(seed)}
	for k := 0; k < numAims; k++ {
		b.tables[k] = sampler.BuildAliasTable(Weights(k, skill))
	}
	return b
}

func (b *Bot) Skill() float64 { return b.skill }

// Weights 某種瞄準在指定技術值下各落點類別的權重（萬分比）。
func Weights(aim int, skill float64) []int {
	w := make([]float64, numClasses)
	switch aim {
	case aimDouble:
		hit := 0.05 + 0.45*skill
		rest := 1 - hit
		w[clsDouble] = hit
		w[clsSingle] = 0.45 * rest
		w[clsMiss] = 0.45 * rest
		w[clsNeighbour] = 0.10 * rest
	case aimTriple:
		hit := 0.04 + 0.41*skill
		rest := 1 - hit
		w[clsTriple] = hit
		w[clsSingle] = 0.70 * rest
		w[clsNeighbour] = 0.25 * rest
		w[clsMiss] = 0.05 * rest
	case aimBull:
		hit := 0.10 + 0.50*skill
		rest := 1 - hit
		w[clsDouble] = 0.3 * hit
		w[clsSingle] = 0.7 * hit
		w[clsNeighbour] = 0.8 * rest
		w[clsMiss] = 0.2 * rest
	default:
		hit := 0.30 + 0.60*skill
		rest := 1 - hit
		w[clsSingle] = 0.90 * hit
		w[clsDouble] = 0.05 * hit
		w[clsTriple] = 0.05 * hit
		w[clsNeighbour] = 0.70 * rest
		w[clsMiss] = 0.30 * rest
	}
	out := make([]int, numClasses)
	for i, v := range w {
		out[i] = int(v*10000 + 0.5)
	}
	return out
}

// Throw 朝 aim 投一鏢。
func (b *Bot) Throw(a Aim) dart.Throw {
	switch b.tables[a.kind()].Pick(b.c) {
	case clsSingle:
		return dart.NewThrow(a.Value, dart.MultSingle)
	case clsDouble:
		return dart.NewThrow(a.Value, dart.MultDouble)
	case clsTriple:
		if a.Value == dart.Bull {
			return dart.NewThrow(a.Value, dart.MultSingle)
		}
		return dart.NewThrow(a.Value, dart.MultTriple)
	case clsNeighbour:
		return dart.NewThrow(b.neighbour(a.Value), dart.MultSingle)
	default:
		return dart.Miss()
	}
}

// neighbour 左右相鄰的區塊；瞄準牛眼時落在任意區塊。
func (b *Bot) neighbour(v int) int {
	if v < 1 || v > 20 {
		return boardOrder[b.c.IntN(len(boardOrder))]
	}
	i := boardIndex[v]
	if b.c.IntN(2) == 0 {
		return boardOrder[(i+19)%20]
	}
	return boardOrder[(i+1)%20]
}

// Choose 依引擎目前的畫面決定瞄準點。
func Choose(info game.Info, v dart.View) Aim {
	keypad := info.Input == dart.InputKeypad
	if keypad && (info.Category == dart.CatFinishing || info.Category == dart.CatScoring) && v.Score > 0 {
		if b, ok := v.Extra.Get("doubleIn"); ok && b == true {
			if o, ok := v.Extra.Get("opened"); ok && o == false {
				return Aim{Value: 20, Mult: dart.MultDouble}
			}
		}
		return Checkout(v.Score, singleOut(v.Extra))
	}
	label := v.Target
	if label == "" && len(v.Targets) > 0 {
		label = v.Targets[0]
	}
	return FromLabel(label)
}

func singleOut(extra dart.Fields) bool {
	if m, ok := extra.Get("checkMode"); ok {
		return m == string(dart.SingleOut)
	}
	if d, ok := extra.Get("doubleOut"); ok {
		return d == false
	}
	return false
}

// FromLabel 把畫面上的目標文字轉成瞄準點；看不懂的一律瞄 T20。
func FromLabel(label string) Aim {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "", "DONE":
		return Aim{Value: 20, Mult: dart.MultTriple}
	case "DOUBLE (ANY)":
		return Aim{Value: 20, Mult: dart.MultDouble}
	case "TRIPLE (ANY)":
		return Aim{Value: 20, Mult: dart.MultTriple}
	case "BULLSEYE", "BULL":
		return Aim{Value: dart.Bull, Mult: dart.MultSingle}
	}
	t, err := dart.ParseTarget(label)
	if err != nil {
		return Aim{Value: 20, Mult: dart.MultTriple}
	}
	switch t.Kind {
	case dart.SpecificDouble:
		return Aim{Value: t.N, Mult: dart.MultDouble}
	case dart.SpecificTriple:
		return Aim{Value: t.N, Mult: dart.MultTriple}
	default:
		return Aim{Value: t.Value(), Mult: dart.MultSingle}
	}
}

// Checkout 剩餘分數的出鏢路線，只看下一鏢。
func Checkout(score int, single bool) Aim {
	if single {
		switch {
		case score <= 20:
			return Aim{Value: max(1, score), Mult: dart.MultSingle}
		case score == 25:
			return Aim{Value: dart.Bull, Mult: dart.MultSingle}
		case score == 50:
			return Aim{Value: dart.Bull, Mult: dart.MultDouble}
		case score <= 40 && score%2 == 0:
			return Aim{Value: score / 2, Mult: dart.MultDouble}
		case score <= 60 && score%3 == 0:
			return Aim{Value: score / 3, Mult: dart.MultTriple}
		case score <= 40:
			return Aim{Value: score - 20, Mult: dart.MultSingle}
		case score <= 60:
			return Aim{Value: 20, Mult: dart.MultSingle}
		default:
			return Aim{Value: 20, Mult: dart.MultTriple}
		}
	}
	switch {
	case score == 50:
		return Aim{Value: dart.Bull, Mult: dart.MultDouble}
	case score <= 40 && score%2 == 0:
		return Aim{Value: score / 2, Mult: dart.MultDouble}
	case score <= 40:
		return Aim{Value: 1, Mult: dart.MultSingle}
	case score <= 60:
		return Aim{Value: score - 40, Mult: dart.MultSingle}
	case score == 61:
		return Aim{Value: 19, Mult: dart.MultTriple}
	default:
		return Aim{Value: 20, Mult: dart.MultTriple}
	}
}

// Play 打完一整場。回傳 false 代表超過 maxRounds 仍未終局（放棄）。
func (b *Bot) Play(eng game.Engine, maxRounds int) bool {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	info := eng.Info()
	for rounds := 0; !eng.Finished(); {
		if rounds >= maxRounds {
			return false
		}
		if !eng.Progress().Darts.Full() && eng.Throw(b.ThrowAt(info, eng.View())) {
			continue
		}
		eng.NextRound()
		rounds++
	}
	return true
}

// ThrowAt 依畫面瞄準並投一鏢。board 類遊戲只回報倍率，落在鄰區也算落空。
func (b *Bot) ThrowAt(info game.Info, v dart.View) dart.Throw {
	a := Choose(info, v)
	t := b.Throw(a)
	if info.Input == dart.InputBoard && t.Value != a.Value {
		return dart.Miss()
	}
	return t
}
