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
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/store"
)

const (
	DefaultSessionTTL  = 2 * time.Hour
	DefaultSweepEvery  = time.Minute
	DefaultMaxSessions = 10_000
)

// RuntimeOptions session 管理器的行為設定，零值代表使用預設。
type RuntimeOptions struct {
	TTL         time.Duration // 閒置多久後被淘汰
	SweepEvery  time.Duration // janitor 掃描間隔
	MaxSessions int           // 同時存活的 session 上限
}

func (o RuntimeOptions) withDefaults() RuntimeOptions {
	if o.TTL <= 0 {
		o.TTL = DefaultSessionTTL
	}
	if o.SweepEvery <= 0 {
		o.SweepEvery = DefaultSweepEvery
	}
	if o.MaxSessions <= 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	return o
}

// SessionRuntime 記憶體內的 session 管理器。
//
// map 由 RWMutex 保護；每個 Session 自帶鎖，不同 session 的操作互不阻塞。
type SessionRuntime struct {
	lab  *Lab
	opts RuntimeOptions
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// counters
	created  atomic.Int64
	finished atomic.Int64
	evicted  atomic.Int64
	panics   atomic.Int64
}

func newSessionRuntime(l *Lab, opts RuntimeOptions) *SessionRuntime {
	rt := &SessionRuntime{
		lab:      l,
		opts:     opts.withDefaults(),
		now:      time.Now,
		sessions: make(map[string]*Session, 64),
		done:     make(chan struct{}),
	}
	rt.reason.Store("")
	return rt
}

func (rt *SessionRuntime) ready(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.Wrap(ctx.Err(), "request canceled")
	case <-rt.done:
		rt.closed.Store(true)
		return errs.NewFatal("session runtime closed: " + rt.ClosedReason())
	default:
		return nil
	}
}

// Create 建立新 session 並回傳初始畫面。
func (rt *SessionRuntime) Create(ctx context.Context, req dto.CreateSessionRequest) (dto.SessionView, error) {
	if err := rt.ready(ctx); err != nil {
		return dto.SessionView{}, err
	}
	if err := req.Valid(); err != nil {
		return dto.SessionView{}, err
	}
	e, err := rt.lab.entry(req.Game)
	if err != nil {
		return dto.SessionView{}, err
	}
	level := 1
	switch {
	case req.Level != nil:
		level = *req.Level
	case req.PlayerLevel != nil:
		level = e.Mapper.Map(*req.PlayerLevel)
	}
	eng, err := rt.lab.NewSession(e.GameID, level, req.Training, req.Settings, req.Seed)
	if err != nil {
		return dto.SessionView{}, err
	}

	rt.mu.Lock()
	if len(rt.sessions) >= rt.opts.MaxSessions {
		rt.mu.Unlock()
		return dto.SessionView{}, errs.NewConflict("session limit reached")
	}
	id := uuid.NewString()
	s := newSession(id, e, req.Player, eng, rt.now())
	rt.sessions[id] = s
	rt.mu.Unlock()

	rt.created.Add(1)
	v, _, err := s.apply(OpView, dart.Throw{}, rt.now())
	return v, err
}

func (rt *SessionRuntime) get(id string) (*Session, error) {
	rt.mu.RLock()
	s, ok := rt.sessions[id]
	rt.mu.RUnlock()
	if !ok {
		return nil, errs.NotFoundf("session %s not found", id)
	}
	return s, nil
}

// Do 在指定 session 上執行一次操作。panic 的 session 會被移除。
func (rt *SessionRuntime) Do(ctx context.Context, id string, op Op, t dart.Throw) (dto.SessionView, error) {
	if err := rt.ready(ctx); err != nil {
		return dto.SessionView{}, err
	}
	s, err := rt.get(id)
	if err != nil {
		return dto.SessionView{}, err
	}
	v, panicked, err := s.apply(op, t, rt.now())
	if panicked {
		rt.panics.Add(1)
		rt.remove(id)
	}
	return v, err
}

func (rt *SessionRuntime) View(ctx context.Context, id string) (dto.SessionView, error) {
	return rt.Do(ctx, id, OpView, dart.Throw{})
}

func (rt *SessionRuntime) Throw(ctx context.Context, id string, t dart.Throw) (dto.SessionView, error) {
	return rt.Do(ctx, id, OpThrow, t)
}

func (rt *SessionRuntime) Next(ctx context.Context, id string) (dto.SessionView, error) {
	return rt.Do(ctx, id, OpNext, dart.Throw{})
}

func (rt *SessionRuntime) Undo(ctx context.Context, id string) (dto.SessionView, error) {
	return rt.Do(ctx, id, OpUndo, dart.Throw{})
}

// Final 目前的結算（未終局時為試算）。
func (rt *SessionRuntime) Final(ctx context.Context, id string) (dto.FinalResult, error) {
	if err := rt.ready(ctx); err != nil {
		return dto.FinalResult{}, err
	}
	s, err := rt.get(id)
	if err != nil {
		return dto.FinalResult{}, err
	}
	res, panicked, err := s.final()
	if panicked {
		rt.panics.Add(1)
		rt.remove(id)
	}
	return res, err
}

// Finish 把已終局的 session 寫入 store，每個 session 只能寫一次。
//
//   - 未終局：Conflict
//   - 已寫入：Conflict
//   - 沒有玩家：Warn
func (rt *SessionRuntime) Finish(ctx context.Context, id, player string, st store.Store) (store.MatchRecord, error) {
	if err := rt.ready(ctx); err != nil {
		return store.MatchRecord{}, err
	}
	if st == nil {
		return store.MatchRecord{}, errs.NewFatal("result store not configured")
	}
	s, err := rt.get(id)
	if err != nil {
		return store.MatchRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken {
		return store.MatchRecord{}, errs.NewFatal("session is broken: " + id)
	}
	if !s.eng.Finished() {
		return store.MatchRecord{}, errs.NewConflict("session not finished: " + id)
	}
	if s.saved {
		return store.MatchRecord{}, errs.NewConflict("session already saved: " + id)
	}
	if player == "" {
		player = s.player
	}
	fs := s.eng.FinalStats()
	info := s.eng.Info()
	prog := s.eng.Progress()
	rec := store.MatchRecord{
		ID:       s.id,
		Player:   player,
		GameID:   info.GameID,
		Category: info.Category,
		Level:    info.Level,
		Training: info.Training,
		Seed:     info.Seed,
		Mode:     fs.Mode(),
		XP:       fs.XP,
		SR:       fs.SR,
		Won:      fs.Won,
		Darts:    prog.Tally.TotalDarts,
		Rounds:   prog.Round,
		Stats:    fs.Stats,
		PlayedAt: rt.now().UTC(),
	}
	if err := st.SaveMatch(ctx, rec); err != nil {
		return store.MatchRecord{}, err
	}
	s.saved = true
	s.touched.Store(rt.now().UnixNano())
	rt.finished.Add(1)
	return rec, nil
}

// Delete 主動結束一個 session（不寫入 store）。
func (rt *SessionRuntime) Delete(ctx context.Context, id string) error {
	if err := rt.ready(ctx); err != nil {
		return err
	}
	if !rt.remove(id) {
		return errs.NotFoundf("session %s not found", id)
	}
	return nil
}

func (rt *SessionRuntime) remove(id string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if _, ok := rt.sessions[id]; !ok {
		return false
	}
	delete(rt.sessions, id)
	return true
}

// Sweep 淘汰閒置超過 TTL 的 session，回傳淘汰數量。
func (rt *SessionRuntime) Sweep() int {
	now := rt.now()
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := 0
	for id, s := range rt.sessions {
		if s.idle(now) > rt.opts.TTL {
			delete(rt.sessions, id)
			n++
		}
	}
	if n > 0 {
		rt.evicted.Add(int64(n))
	}
	return n
}

// Run 啟動 janitor，直到 ctx 結束或 runtime 關閉才返回。
func (rt *SessionRuntime) Run(ctx context.Context) {
	tk := time.NewTicker(rt.opts.SweepEvery)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rt.done:
			return
		case <-tk.C:
			rt.Sweep()
		}
	}
}

func (rt *SessionRuntime) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.sessions)
}

// RuntimeMetrics 拉取式的觀測快照。
type RuntimeMetrics struct {
	Live        int    `json:"live"`         // 目前存活的 session
	Created     int64  `json:"created"`      // 累計建立
	Finished    int64  `json:"finished"`     // 累計寫入 store
	Evicted     int64  `json:"evicted"`      // 累計因閒置被淘汰
	Panics      int64  `json:"panics"`       // 累計 panic
	Closed      bool   `json:"closed"`       // 是否已關閉
	CloseReason string `json:"close_reason"` // 關閉原因
}

func (rt *SessionRuntime) Metrics() RuntimeMetrics {
	return RuntimeMetrics{
		Live:        rt.Len(),
		Created:     rt.created.Load(),
		Finished:    rt.finished.Load(),
		Evicted:     rt.evicted.Load(),
		Panics:      rt.panics.Load(),
		Closed:      rt.Closed(),
		CloseReason: rt.ClosedReason(),
	}
}

// Lab 建立此 runtime 的 Lab（只讀）。
func (rt *SessionRuntime) Lab() *Lab { return rt.lab }

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *SessionRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *SessionRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
	})
}

// Closed reports whether the runtime has been closed.
func (rt *SessionRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *SessionRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
