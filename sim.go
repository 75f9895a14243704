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

package dartlab

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/dartlab/catalog"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/recorder"
	"github.com/zintix-labs/dartlab/sdk/bot"
	"github.com/zintix-labs/dartlab/stats"
)

const capPrepare int = 100

// Simulator 讓機器人大量對局，並平行紀錄統計。
//
// 同樣的 seed、參數與 workers 數永遠得到同樣的報表。
type Simulator struct {
	GameID    string                    // 遊戲 id
	Title     string                    // 顯示名稱
	entry     catalog.Entry             // 目錄資訊
	lab       *Lab                      // 建立 session 用
	initSeed  int64                     // 初始下的種子
	seedmaker *seedMaker                // 種子生成器
	rBuf      []*recorder.MatchRecorder // 併發對局紀錄員
}

// SimParams 一次模擬的對局設定。
type SimParams struct {
	Level     int
	Training  bool
	Skill     float64 // 機器人技術 [0,1]
	MaxRounds int     // 一場最多打幾輪，0 用 bot.DefaultMaxRounds
}

func newSimulator(l *Lab, e catalog.Entry, seed int64) *Simulator {
	return &Simulator{
		GameID:    e.GameID,
		Title:     e.Title,
		entry:     e,
		lab:       l,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		rBuf:      make([]*recorder.MatchRecorder, 0, capPrepare),
	}
}

// Seed 建立時的初始種子。
func (s *Simulator) Seed() int64 { return s.initSeed }

// Sim 單線模擬器：連續打 matches 場並回傳統計結果與用時
func (s *Simulator) Sim(p SimParams, matches int, showpb bool) (*stats.SimReport, time.Duration, error) {
	return s.SimMP(p, matches, 1, showpb)
}

// SimMP 平行執行 mp 個機器人，每個各打 matches 場，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(p SimParams, matches int, mp int, showpb bool) (*stats.SimReport, time.Duration, error) {
	defer s.reset()
	if err := s.valid(p, matches, mp); err != nil {
		return nil, 0, err
	}
	p.Level = min(max(p.Level, 1), s.entry.MaxLevel())

	// 依序取種子，結果才與排程無關
	seeds := make([]int64, mp)
	for i := range seeds {
		seeds[i] = s.seedmaker.next()
	}
	for len(s.rBuf) < mp {
		s.rBuf = append(s.rBuf, recorder.NewMatchRecorder(s.GameID, s.Title, p.Level, p.Training, p.Skill))
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(matches * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	var failed atomic.Pointer[error]
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			if err := s.play(p, matches, seeds[i], s.rBuf[i], bar); err != nil {
				failed.CompareAndSwap(nil, &err)
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if e := failed.Load(); e != nil {
		return nil, used, *e
	}

	st, err := recorder.MergeMatchRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, used, err
	}
	return st.Done(), used, nil
}

// SimLevels 對每個難度等級各跑一次 SimMP，產出難度曲線。
func (s *Simulator) SimLevels(skill float64, matches int, mp int, showpb bool) (*stats.LevelCurve, time.Duration, error) {
	curve := &stats.LevelCurve{GameID: s.GameID, Skill: skill}
	var used time.Duration
	for lv := 1; lv <= s.entry.MaxLevel(); lv++ {
		rep, ut, err := s.SimMP(SimParams{Level: lv, Skill: skill}, matches, mp, showpb)
		if err != nil {
			return nil, used, err
		}
		used += ut
		curve.Add(stats.NewLevelPoint(rep))
	}
	return curve, used, nil
}

// play 單一 worker：自己的機器人、自己的種子序列。
func (s *Simulator) play(p SimParams, matches int, seed int64, rec *recorder.MatchRecorder, bar *pb.ProgressBar) error {
	sm := newSeedMaker(seed)
	b := bot.New(p.Skill, sm.next())
	for range matches {
		eng, err := s.lab.NewSession(s.GameID, p.Level, p.Training, nil, sm.next())
		if err != nil {
			return err
		}
		done := b.Play(eng, p.MaxRounds)
		rec.Record(eng.FinalStats(), eng.Progress(), done)
		bar.Increment()
	}
	return nil
}

func (s *Simulator) valid(p SimParams, matches int, mp int) error {
	if mp <= 0 {
		return errs.NewWarn("workers must > 0")
	}
	if matches < 1 {
		return errs.NewWarn("matches must > 0")
	}
	if p.Skill < 0 || p.Skill > 1 {
		return errs.Warnf("skill must be in [0,1], got %v", p.Skill)
	}
	if p.MaxRounds < 0 {
		return errs.NewWarn("max rounds must >= 0")
	}
	return nil
}

func (s *Simulator) reset() {
	for i := range s.rBuf {
		s.rBuf[i] = nil
	}
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果；0 會被換成 1，session 把 0 當成「隨機」。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			if v := int64(mix63(next)); v != 0 {
				return v
			}
			return 1
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
