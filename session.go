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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/dartlab/catalog"
	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// Op session 上的操作種類。
type Op uint8

const (
	OpView Op = iota
	OpThrow
	OpNext
	OpUndo
)

var opNames = map[string]Op{
	"view":  OpView,
	"throw": OpThrow,
	"next":  OpNext,
	"undo":  OpUndo,
}

// ParseOp 由字串解析操作（websocket 使用）。
func ParseOp(s string) (Op, error) {
	if op, ok := opNames[s]; ok {
		return op, nil
	}
	return 0, errs.Warnf("unknown op: %q", s)
}

// Session 一場進行中的對局。
//
// 一個 Session 只持有一個引擎；mu 讓 HTTP 與 websocket 的呼叫者排隊，
// 引擎本身不需要併發安全。
type Session struct {
	id      string
	entry   catalog.Entry
	player  string
	eng     game.Engine
	created time.Time

	mu      sync.Mutex
	touched atomic.Int64 // 最後一次操作（unix nano），janitor 以此判斷閒置
	saved   bool         // 結果已寫入 store
	broken  bool         // 曾發生 panic，狀態不可信
}

func newSession(id string, e catalog.Entry, player string, eng game.Engine, now time.Time) *Session {
	s := &Session{
		id:      id,
		entry:   e,
		player:  player,
		eng:     eng,
		created: now,
	}
	s.touched.Store(now.UnixNano())
	return s
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Player() string     { return s.player }
func (s *Session) Info() game.Info    { return s.eng.Info() }
func (s *Session) Created() time.Time { return s.created }

// idle 距離最後一次操作的時間。
func (s *Session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.touched.Load()))
}

// apply 在 session 鎖內執行一次操作。
//
// 原則：
//   - panic 一律視為 broken，之後的操作直接回 Fatal（由 runtime 淘汰）。
//   - 引擎拒絕的操作不是錯誤：回傳 Accepted=false，狀態不變。
func (s *Session) apply(op Op, t dart.Throw, now time.Time) (view dto.SessionView, panicked bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return view, false, errs.NewFatal("session is broken: " + s.id)
	}
	s.touched.Store(now.UnixNano())

	defer func() {
		if r := recover(); r != nil {
			s.broken = true
			panicked = true
			err = errs.NewFatal(fmt.Sprintf("session %s (%s) panic: %v", s.id, s.entry.GameID, r))
		}
	}()

	accepted := true
	switch op {
	case OpView:
	case OpThrow:
		accepted = s.eng.Throw(t)
	case OpNext:
		accepted = s.eng.NextRound()
	case OpUndo:
		accepted = s.eng.Undo()
	default:
		return view, false, errs.Warnf("unknown op: %d", op)
	}
	return s.viewLocked(accepted), false, nil
}

func (s *Session) viewLocked(accepted bool) dto.SessionView {
	return dto.NewSessionView(s.id, s.entry.Title, s.player, s.eng, accepted, undoDepth(s.eng), s.saved)
}

// final 目前的結算；未終局時為試算。broken 與 panic 的處理同 apply。
func (s *Session) final() (res dto.FinalResult, panicked bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return res, false, errs.NewFatal("session is broken: " + s.id)
	}

	defer func() {
		if r := recover(); r != nil {
			s.broken = true
			panicked = true
			res = dto.FinalResult{}
			err = errs.NewFatal(fmt.Sprintf("session %s (%s) final panic: %v", s.id, s.entry.GameID, r))
		}
	}()

	return dto.FinalResult{
		ID:       s.id,
		GameID:   s.entry.GameID,
		Finished: s.eng.Finished(),
		Final:    s.eng.FinalStats(),
	}, false, nil
}

func undoDepth(eng game.Engine) int {
	if h, ok := eng.(interface{ HistoryLen() int }); ok {
		return h.HistoryLen()
	}
	return 0
}
