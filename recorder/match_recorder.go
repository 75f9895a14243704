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

package recorder

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/stats"
)

// MatchRecorder 對局紀錄員
//
// MatchRecorder 負責紀錄機器人對局結果，並透過 Done 輸出統計報表。
// 一個 MatchRecorder 只給一個 goroutine 使用，併發時各自紀錄再 Merge。
type MatchRecorder struct {
	GameID   string
	Title    string
	Level    int
	Training bool
	Skill    float64
	Basic    *BasicRecord
	Dist     []int     // SR 區間落點
	srs      []float64 // 逐場 SR，給分位估計
	xps      []float64 // 逐場 XP
}

// BasicRecord 基本對局資料紀錄
type BasicRecord struct {
	Matches   int
	Wins      int
	Abandoned int
	XPSum     int
	XPSqSum   int // 平方和
	SRSum     int
	SRSqSum   int // 平方和
	NetSum    int
	Darts     int
	Hits      int
	Rounds    int
}

func NewMatchRecorder(gameID, title string, level int, training bool, skill float64) *MatchRecorder {
	return &MatchRecorder{
		GameID:   gameID,
		Title:    title,
		Level:    level,
		Training: training,
		Skill:    skill,
		Basic:    new(BasicRecord),
		Dist:     make([]int, stats.SRBuckets.Len()),
	}
}

// MergeMatchRecorder 合併同一組設定下的多個紀錄員。
func MergeMatchRecorder(r []*MatchRecorder) (*MatchRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge match record err : no recorder")
	}
	r0 := r[0]
	s := NewMatchRecorder(r0.GameID, r0.Title, r0.Level, r0.Training, r0.Skill)
	for _, v := range r {
		if v.GameID != r0.GameID {
			return s, errs.NewFatal("merge match record err : different game")
		}
		if v.Level != r0.Level || v.Training != r0.Training {
			return s, errs.NewFatal("merge match record err : different level or mode")
		}
		if v.Skill != r0.Skill {
			return s, errs.NewFatal("merge match record err : different skill")
		}
		b := v.Basic
		s.Basic.Matches += b.Matches
		s.Basic.Wins += b.Wins
		s.Basic.Abandoned += b.Abandoned
		s.Basic.XPSum += b.XPSum
		s.Basic.XPSqSum += b.XPSqSum
		s.Basic.SRSum += b.SRSum
		s.Basic.SRSqSum += b.SRSqSum
		s.Basic.NetSum += b.NetSum
		s.Basic.Darts += b.Darts
		s.Basic.Hits += b.Hits
		s.Basic.Rounds += b.Rounds
		for i := range v.Dist {
			s.Dist[i] += v.Dist[i]
		}
		s.srs = append(s.srs, v.srs...)
		s.xps = append(s.xps, v.xps...)
	}
	return s, nil
}

// Record 紀錄一場對局。finished 為 false 代表機器人超過輪數上限放棄，只計入場次。
func (s *MatchRecorder) Record(fs dart.FinalStats, p dart.Progress, finished bool) {
	b := s.Basic
	b.Matches++
	if !finished {
		b.Abandoned++
		return
	}
	if fs.Won {
		b.Wins++
	}
	b.XPSum += fs.XP
	b.XPSqSum += fs.XP * fs.XP
	b.SRSum += fs.SR
	b.SRSqSum += fs.SR * fs.SR
	b.NetSum += p.Net()
	b.Darts += p.Tally.TotalDarts
	b.Hits += p.Tally.Hits
	b.Rounds += p.Round
	s.Dist[stats.SRBuckets.Index(fs.SR)]++
	s.srs = append(s.srs, float64(fs.SR))
	s.xps = append(s.xps, float64(fs.XP))
}

// Done 轉成報表；報表已呼叫過 Done，可直接輸出。
func (s *MatchRecorder) Done() *stats.SimReport {
	rep := stats.NewSimReport(s.GameID, s.Title, s.Level, s.Training, s.Skill)
	b := s.Basic
	rep.Summary.Matches = b.Matches
	rep.Summary.Wins = b.Wins
	rep.Summary.Abandoned = b.Abandoned
	rep.Score = &stats.ScoreReport{
		XPSum:   b.XPSum,
		XPSqSum: b.XPSqSum,
		SRSum:   b.SRSum,
		SRSqSum: b.SRSqSum,
		NetSum:  b.NetSum,
		Darts:   b.Darts,
		Hits:    b.Hits,
		Rounds:  b.Rounds,
	}
	copy(rep.Dist.SRCollect, s.Dist)
	if len(s.srs) > 0 {
		rep.Quant = stats.NewQuantReport(s.srs, s.xps)
	}
	rep.Done()
	return rep
}
