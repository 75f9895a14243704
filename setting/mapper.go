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

package setting

import (
	"fmt"
	"slices"

	"github.com/zintix-labs/dartlab/errs"
)

// Mapper 玩家等級 → 遊戲難度的階梯函數。
//
// 三種寫法擇一：
//
//	breakpoints: [10, 20, 35]  # playerLevel < 10 → 1，< 20 → 2，< 35 → 3，其餘 → 4
//	every: 5                   # floor(playerLevel / 5) + 1
//	(兩者皆空)                  # 永遠是 1
//
// 結果一律夾在 [1, Max]。
type Mapper struct {
	Breakpoints []int `yaml:"breakpoints,omitempty" json:"breakpoints,omitempty"`
	Every       int   `yaml:"every,omitempty"       json:"every,omitempty"`
	Max         int   `yaml:"max"                   json:"max"`
}

// Map 單調不遞減，對任意輸入（含負數與極大值）都有界。
func (m Mapper) Map(playerLevel int) int {
	lv := 1
	switch {
	case len(m.Breakpoints) > 0:
		for _, bp := range m.Breakpoints {
			if playerLevel < bp {
				break
			}
			lv++
		}
	case m.Every > 0:
		if playerLevel > 0 {
			lv = playerLevel/m.Every + 1
		}
	}
	return min(max(1, m.Max), max(1, lv))
}

func (m Mapper) valid() error {
	if m.Max < 1 {
		return errs.NewFatal(fmt.Sprintf("mapper max must be >= 1, got %d", m.Max))
	}
	if len(m.Breakpoints) > 0 && m.Every > 0 {
		return errs.NewFatal("mapper: breakpoints and every are exclusive")
	}
	if m.Every < 0 {
		return errs.NewFatal("mapper: every must be >= 0")
	}
	if !slices.IsSorted(m.Breakpoints) {
		return errs.NewFatal("mapper: breakpoints must be ascending")
	}
	for i := 1; i < len(m.Breakpoints); i++ {
		if m.Breakpoints[i] == m.Breakpoints[i-1] {
			return errs.NewFatal(fmt.Sprintf("mapper: duplicate breakpoint %d", m.Breakpoints[i]))
		}
	}
	return nil
}
