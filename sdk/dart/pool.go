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

import "math"

// Gauge 一種消耗資源（能量 bolts 或生命 hearts）的規則。
//
// Start == 0 代表此系統在本關停用：不回復、不扣除。
// Regen 可以是小數（例如 0.5），所以計數一律用 float64。
type Gauge struct {
	Start float64
	Cap   float64 // 回復上限；0 代表以 Start 為上限
	Regen float64 // 每次命中回復量
	Cost  float64 // 每次落空扣除量；0 代表 1
}

// Active 此系統是否啟用。
func (g Gauge) Active() bool { return g.Start > 0 }

func (g Gauge) limit() float64 {
	if g.Cap > 0 {
		return g.Cap
	}
	return g.Start
}

func (g Gauge) cost() float64 {
	if g.Cost > 0 {
		return g.Cost
	}
	return 1
}

// PoolRule 能量 + 生命的組合規則。
type PoolRule struct {
	Energy Gauge
	Lives  Gauge
	// RegenInactive 為 true 時，即使 Start == 0 也會在命中時回復能量（Section Hit 的行為）。
	RegenInactive bool
}

// Pool 能量與生命的即時數值，永遠落在 [0, cap]。
type Pool struct {
	Energy float64 `json:"energy"`
	Lives  float64 `json:"lives"`
}

// NewPool 依規則建立初始值。
func NewPool(r PoolRule) Pool {
	return Pool{
		Energy: clamp(r.Energy.Start, r.Energy.limit()),
		Lives:  clamp(r.Lives.Start, r.Lives.limit()),
	}
}

// Drain 一次落空被哪一層吸收。
type Drain uint8

const (
	// DrainEnergy 能量吸收，尚未見底。
	DrainEnergy Drain = iota
	// DrainBurnout 能量吸收並歸零。是否真的觸發燃盡由引擎決定。
	DrainBurnout
	// DrainLife 扣一條命，尚有剩餘。
	DrainLife
	// DrainLastLife 扣到沒命。
	DrainLastLife
	// DrainExhausted 生命系統啟用但已歸零。
	DrainExhausted
	// DrainNone 兩個系統都無法吸收。
	DrainNone
)

// Regen 命中回復，只回復啟用中的系統，且不超過上限。
func (p *Pool) Regen(r PoolRule) {
	if r.Energy.Regen > 0 && (r.Energy.Active() || r.RegenInactive) {
		p.Energy = clamp(p.Energy+r.Energy.Regen, r.Energy.limit())
	}
	if r.Lives.Regen > 0 && r.Lives.Active() {
		p.Lives = clamp(p.Lives+r.Lives.Regen, r.Lives.limit())
	}
}

// Absorb 落空：先扣能量，能量耗盡才扣生命。
func (p *Pool) Absorb(r PoolRule) Drain {
	if p.Energy > 0 {
		p.Energy = math.Max(0, p.Energy-r.Energy.cost())
		if p.Energy == 0 {
			return DrainBurnout
		}
		return DrainEnergy
	}
	if p.Lives > 0 {
		p.Lives = math.Max(0, p.Lives-r.Lives.cost())
		if p.Lives == 0 {
			return DrainLastLife
		}
		return DrainLife
	}
	if r.Lives.Active() {
		return DrainExhausted
	}
	return DrainNone
}

// Within 檢查能量與生命是否落在規則允許的範圍內。
func (p Pool) Within(r PoolRule) bool {
	return p.Energy >= 0 && p.Lives >= 0 &&
		p.Energy <= math.Max(r.Energy.limit(), r.Energy.Start) &&
		p.Lives <= math.Max(r.Lives.limit(), r.Lives.Start)
}

func clamp(v, hi float64) float64 {
	if v < 0 {
		return 0
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}
