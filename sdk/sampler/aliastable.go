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

// Package sampler 整數權重的加權抽樣。
//
// 模擬器的機器人每一鏢都要依技術值抽出落點類別（落空、鄰區、單倍、雙倍、三倍），
// 抽樣次數與模擬場數成正比，所以採用 O(1) 抽樣的 Vose alias table。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/dartlab/sdk/core"
)

// AliasTable Vose alias method 的整數版本。
//
//   - 建表 O(N)，抽樣 O(1)。
//   - 全程整數運算，不經過 float64，避免 0.999... != 1.0 的誤差。
//   - 建表時檢查 w*n 是否溢位。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 以非負整數權重建表，權重不需正規化。
//
// 負權重、權重總和為零或溢位都會 panic：權重來自程式內的常數，出錯代表程式錯誤。
func BuildAliasTable(weights []int) *AliasTable {
	n := len(weights)
	if n == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}
	}
	total := uint64(0)
	for _, w := range weights {
		if w < 0 {
			panic("AliasTable: negative weight encountered")
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			panic("AliasTable: total weight overflow int range")
		}
		total += uint64(w)
	}
	if total == 0 {
		panic("AliasTable: all weights are zero")
	}
	if hi, lo := bits.Mul64(total, uint64(n)); hi != 0 || lo > math.MaxInt64 {
		panic("AliasTable: weights are too large, causing overflow")
	}

	t := int(total)
	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		prob[i] = w * n // 以 n 放大，與 total 比較
		if prob[i] < t {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - t // sum(prob) = total * n 不變
		if prob[l] < t {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的欄位機率為 1，alias 指向自己
	for _, i := range append(small, large...) {
		prob[i] = t
		aliases[i] = i
	}
	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: t}
}

// Pick 抽出一個索引；空表回傳 -1。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
