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

// Package levelsys 玩家等級曲線：XP = 80 · L^2.25。
package levelsys

import "math"

const (
	// MaxLevel 玩家等級上限。
	MaxLevel = 99
	// xpUnit 等級 1 的門檻。
	xpUnit = 80.0
	// exponent 曲線指數。
	exponent = 2.25
)

// Level 累積 XP 對應的玩家等級，落在 [1, MaxLevel]。
func Level(xp int) int {
	if xp < int(xpUnit) {
		return 1
	}
	lv := int(math.Floor(math.Pow(float64(xp)/xpUnit, 1/exponent)))
	return min(MaxLevel, max(1, lv))
}

// XPForLevel 到達等級 l 所需的累積 XP。
func XPForLevel(l int) int {
	if l < 1 {
		return 0
	}
	return int(math.Floor(xpUnit * math.Pow(float64(l), exponent)))
}

// LevelProgress 等級進度條。
type LevelProgress struct {
	Level    int     `json:"level"`
	XP       int     `json:"xp"`
	Percent  float64 `json:"percent"`    // [2, 100]
	XPToNext int     `json:"xp_to_next"` // 滿級時為 0
}

// Progress 計算目前等級內的進度。
// 百分比下限為 2，讓進度條永遠有一點長度。
func Progress(xp int) LevelProgress {
	lv := Level(xp)
	if lv >= MaxLevel {
		return LevelProgress{Level: lv, XP: xp, Percent: 100}
	}
	start := XPForLevel(lv)
	next := XPForLevel(lv + 1)
	pct := float64(xp-start) / float64(next-start) * 100
	return LevelProgress{
		Level:    lv,
		XP:       xp,
		Percent:  min(100, max(2, pct)),
		XPToNext: max(0, next-xp),
	}
}
