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

package stats

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// QuantReport SR 與 XP 的分位估計
type QuantReport struct {
	SR QuantStat `json:"SR"`
	XP QuantStat `json:"XP"`
}

type QuantStat struct {
	P10 QuantPoint `json:"P10"`
	P50 QuantPoint `json:"P50"`
	P90 QuantPoint `json:"P90"`
}

type QuantPoint struct {
	Hat float64 `json:"Hat"`
	CI  CI      `json:"CI"`
}

// LevelPoint 單一難度等級的模擬結果
type LevelPoint struct {
	Level   int     `json:"Level"`
	Matches int     `json:"Matches"`
	Wins    int     `json:"Wins"`
	WinRate float64 `json:"WinRate"`
	WinCI   CI      `json:"WinCI"` // Clopper–Pearson
	MeanSR  float64 `json:"MeanSR"`
	MeanXP  float64 `json:"MeanXP"`
}

// LevelCurve 依等級遞增排列的難度曲線
type LevelCurve struct {
	GameID string       `json:"GameID"`
	Skill  float64      `json:"Skill"`
	Points []LevelPoint `json:"Points"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// NewQuantReport 由逐場樣本估計分位數。
func NewQuantReport(sr, xp []float64) *QuantReport {
	return &QuantReport{
		SR: quantStat(sr, Confidence),
		XP: quantStat(xp, Confidence),
	}
}

// ShareAtMost 估計 P(X ≤ x0) 與其信賴區間。
func ShareAtMost(data []float64, x0 float64) (float64, CI) {
	return percentileCIForValue(data, x0, Confidence)
}

// NewLevelPoint 由單一等級的報表建立曲線點。
func NewLevelPoint(r *SimReport) LevelPoint {
	r.Done()
	s := r.Summary
	p, ci := proportionCICP(s.Wins, s.Matches, Confidence)
	return LevelPoint{
		Level:   s.Level,
		Matches: s.Matches,
		Wins:    s.Wins,
		WinRate: p,
		WinCI:   ci,
		MeanSR:  s.MeanSR,
		MeanXP:  s.MeanXP,
	}
}

// Add 加入一個等級點並維持排序。
func (c *LevelCurve) Add(p LevelPoint) {
	c.Points = append(c.Points, p)
	sort.Slice(c.Points, func(i, j int) bool { return c.Points[i].Level < c.Points[j].Level })
}

// Recommend 回傳勝率最接近 target 的等級；同距離取較高等級。
//
// 曲線為空時回傳 0。
func (c *LevelCurve) Recommend(target float64) int {
	best, dist := 0, math.Inf(1)
	for _, p := range c.Points {
		d := math.Abs(p.WinRate - target)
		if d < dist || (d == dist && p.Level > best) {
			best, dist = p.Level, d
		}
	}
	return best
}

// Out 印出難度曲線。
func (c *LevelCurve) Out(w io.Writer) {
	keys := make([]string, 0, len(c.Points))
	msg := make(map[string]string, len(c.Points))
	for _, p := range c.Points {
		k := fmt.Sprintf("Level %d", p.Level)
		keys = append(keys, k)
		msg[k] = fmt.Sprintf("%s  SR %.1f  XP %.1f", fmtHatCIpct01(p.WinRate, p.WinCI), p.MeanSR, p.MeanXP)
	}
	fmt.Fprintln(w, fmtTable(fmt.Sprintf("%s @ skill %.2f", c.GameID, c.Skill), keys, msg))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func quantStat(data []float64, confidence float64) QuantStat {
	at := func(q float64) QuantPoint {
		lo, hi := quantileCI(data, q, confidence)
		return QuantPoint{Hat: quantilePoint(data, q), CI: CI{Lo: lo, Hi: hi}}
	}
	return QuantStat{P10: at(0.1), P50: at(0.5), P90: at(0.9)}
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 估第 q 分位的上下界：order statistic 的秩視為二項，以 Beta 反推 p 範圍，再轉回樣本索引。
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return data[0], data[0]
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := min(max(int(pLo*float64(n)), 0), n-1)
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	ui = min(max(ui, 0), n-1)
	return cp[li], cp[ui]
}

// 最近秩法
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	idx := min(max(int(q*float64(n)), 0), n-1)
	return cp[idx]
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}
