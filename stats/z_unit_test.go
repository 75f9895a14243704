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

package stats_test

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/dartlab/stats"
)

// buildSimReport constructs a SimReport where every match won iff sr >= 60.
func buildSimReport(srs []int, xps []int) *stats.SimReport {
	rep := stats.NewSimReport("atc", "Around the Clock", 3, false, 0.5)
	srF := make([]float64, len(srs))
	xpF := make([]float64, len(xps))
	for i, sr := range srs {
		rep.Summary.Matches++
		if sr >= 60 {
			rep.Summary.Wins++
		}
		rep.Score.SRSum += sr
		rep.Score.SRSqSum += sr * sr
		rep.Score.XPSum += xps[i]
		rep.Score.XPSqSum += xps[i] * xps[i]
		rep.Score.Darts += 30
		rep.Score.Hits += 15
		rep.Score.Rounds += 10
		rep.Dist.SRCollect[stats.SRBuckets.Index(sr)]++
		srF[i] = float64(sr)
		xpF[i] = float64(xps[i])
	}
	rep.Quant = stats.NewQuantReport(srF, xpF)
	rep.Done()
	return rep
}

func TestSimReportCoreMetrics(t *testing.T) {
	rep := buildSimReport([]int{40, 80}, []int{100, 300})
	s := rep.Summary

	if s.WinRate != 0.5 {
		t.Fatalf("win rate got %.3f want 0.5", s.WinRate)
	}
	if !(s.WinCI.Lo < 0.5 && s.WinCI.Hi > 0.5) {
		t.Fatalf("win CI %+v should contain 0.5", s.WinCI)
	}
	if s.MeanSR != 60 || s.MeanXP != 200 {
		t.Fatalf("means got sr=%.2f xp=%.2f", s.MeanSR, s.MeanXP)
	}
	wantStd := math.Sqrt(800) // ((40-60)^2+(80-60)^2)/(2-1)
	if math.Abs(s.StdSR-wantStd) > 1e-9 {
		t.Fatalf("std SR got %.6f want %.6f", s.StdSR, wantStd)
	}
	if !(s.SRCI.Lo < 60 && s.SRCI.Hi > 60) {
		t.Fatalf("SR CI %+v should contain mean", s.SRCI)
	}
	if s.MeanDarts != 30 || s.MeanRound != 10 || s.HitRate != 0.5 {
		t.Fatalf("unexpected darts=%v rounds=%v hit=%v", s.MeanDarts, s.MeanRound, s.HitRate)
	}

	total := 0
	for _, c := range rep.Dist.SRCollect {
		total += c
	}
	if total != s.Matches {
		t.Fatalf("distribution total %d != matches %d", total, s.Matches)
	}

	rep.Done() // idempotent
	if rep.Summary.MeanSR != 60 {
		t.Fatalf("mean changed after second Done")
	}
}

func TestSimReportAbandonedOnlyInWinRate(t *testing.T) {
	rep := stats.NewSimReport("x01", "501", 1, false, 0.1)
	rep.Summary.Matches = 4
	rep.Summary.Abandoned = 2
	rep.Summary.Wins = 1
	rep.Score.SRSum = 100
	rep.Score.SRSqSum = 5000
	rep.Done()
	if rep.Summary.WinRate != 0.25 {
		t.Fatalf("win rate got %v want 0.25", rep.Summary.WinRate)
	}
	if rep.Summary.MeanSR != 50 {
		t.Fatalf("mean SR got %v want 50", rep.Summary.MeanSR)
	}
}

func TestSimReportEmpty(t *testing.T) {
	rep := stats.NewSimReport("atc", "ATC", 1, true, 0)
	rep.Done()
	if rep.Summary.WinRate != 0 || rep.Summary.WinCI.Hi != 1 {
		t.Fatalf("empty report got %+v", rep.Summary)
	}
}

func TestSRBuckets(t *testing.T) {
	cases := map[int]string{
		-5:  "[0,0]",
		0:   "[0,0]",
		1:   "[1,20)",
		19:  "[1,20)",
		20:  "[20,40)",
		179: "[160,180)",
		180: "[180,180]",
		999: "[180,180]",
	}
	labels := stats.SRBuckets.Labels()
	if len(labels) != stats.SRBuckets.Len() {
		t.Fatalf("labels len mismatch")
	}
	for sr, want := range cases {
		if got := labels[stats.SRBuckets.Index(sr)]; got != want {
			t.Fatalf("sr %d bucket got %s want %s", sr, got, want)
		}
	}
}

func TestQuantReport(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}
	q := stats.NewQuantReport(data, data)
	if math.Abs(q.SR.P50.Hat-50) > 1 {
		t.Fatalf("P50 got %.2f", q.SR.P50.Hat)
	}
	if math.Abs(q.XP.P90.Hat-90) > 1 {
		t.Fatalf("P90 got %.2f", q.XP.P90.Hat)
	}
	if q.SR.P50.CI.Lo > q.SR.P50.Hat || q.SR.P50.CI.Hi < q.SR.P50.Hat {
		t.Fatalf("P50 CI %+v does not bracket %.2f", q.SR.P50.CI, q.SR.P50.Hat)
	}

	p, ci := stats.ShareAtMost(data, 49)
	if p != 0.5 || ci.Lo > 0.5 || ci.Hi < 0.5 {
		t.Fatalf("share got %.3f %+v", p, ci)
	}
}

func TestLevelCurveRecommend(t *testing.T) {
	c := &stats.LevelCurve{GameID: "atc", Skill: 0.5}
	if c.Recommend(0.5) != 0 {
		t.Fatalf("empty curve should recommend 0")
	}
	c.Add(stats.LevelPoint{Level: 3, WinRate: 0.3})
	c.Add(stats.LevelPoint{Level: 1, WinRate: 0.9})
	c.Add(stats.LevelPoint{Level: 2, WinRate: 0.6})
	if c.Points[0].Level != 1 || c.Points[2].Level != 3 {
		t.Fatalf("points not sorted: %+v", c.Points)
	}
	if got := c.Recommend(0.5); got != 2 {
		t.Fatalf("recommend got %d want 2", got)
	}

	lp := stats.NewLevelPoint(buildSimReport([]int{70, 70, 10}, []int{1, 1, 1}))
	if lp.Wins != 2 || lp.Matches != 3 || lp.WinCI.Lo > lp.WinRate || lp.WinCI.Hi < lp.WinRate {
		t.Fatalf("level point got %+v", lp)
	}
}

func TestRenders(t *testing.T) {
	rep := buildSimReport([]int{40, 80, 120}, []int{10, 20, 30})

	var js bytes.Buffer
	if err := rep.WriteWith(&js, stats.RenderOf[stats.SimReport](stats.FormatJSON)); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("json output invalid: %v", err)
	}
	if _, ok := back["Summary"]; !ok {
		t.Fatalf("json missing Summary: %s", js.String())
	}

	var ym bytes.Buffer
	if err := rep.WriteWith(&ym, stats.YAMLRender[stats.SimReport]{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(ym.String(), "srbucket: [") {
		t.Fatalf("yaml sequences should be flow style:\n%s", ym.String())
	}

	var out bytes.Buffer
	rep.StdOut(&out, 1500*time.Millisecond)
	if !strings.Contains(out.String(), "Around the Clock") || !strings.Contains(out.String(), "used:") {
		t.Fatalf("stdout table missing content:\n%s", out.String())
	}

	curve := &stats.LevelCurve{GameID: "atc", Skill: 0.5}
	curve.Add(stats.NewLevelPoint(rep))
	var cy bytes.Buffer
	if err := stats.RenderOf[stats.LevelCurve](stats.FormatYAML).Write(&cy, curve); err != nil {
		t.Fatalf("curve yaml: %v", err)
	}
	if stats.RenderOf[stats.LevelCurve](stats.FormatTable) != nil {
		t.Fatalf("table format has no generic render")
	}
	for _, bad := range []string{"", "csv"} {
		if _, err := stats.ParseFormat(bad); err == nil {
			t.Fatalf("ParseFormat(%q) should fail", bad)
		}
	}
	if f, err := stats.ParseFormat(" JSON "); err != nil || f != stats.FormatJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	var co bytes.Buffer
	curve.Out(&co)
	if !strings.Contains(co.String(), "Level 3") {
		t.Fatalf("curve table missing level:\n%s", co.String())
	}
}
