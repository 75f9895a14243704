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

package core

// RAND 定義核心亂數取樣能力。
//
// 合約：同一實作、同一版本下，同一個 seed 必須產生同一條序列。
// session 的隨機目標（練習模式的區塊、Checkout 目標數、暖身隨機槽位）
// 都在建立時一次抽完，所以只要保存 seed 就能完整重現一場比賽，不需要快照狀態。
type RAND interface {
	// Uint64 回傳 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// Core 封裝 RAND，並提供抽目標用的工具方法。
type Core struct {
	RAND
}

// NewWithSeed 以預設 PCG64 建立 Core。
func NewWithSeed(seed int64) *Core {
	return &Core{newPCG64WithSeed(seed)}
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

// PickN 可重複地抽出 n 個元素。
func (c *Core) PickN(src []int, n int) []int {
	if n <= 0 || len(src) == 0 {
		return []int{}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = src[c.IntN(len(src))]
	}
	return out
}

// Between 回傳 [lo,hi] 的整數；lo > hi 時回傳 lo。
func (c *Core) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.IntN(hi-lo+1)
}
