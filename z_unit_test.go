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
	"reflect"
	"testing"
	"time"

	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games"
	"github.com/zintix-labs/dartlab/sdk/bot"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/store"
)

func newTestLab(t *testing.T) *Lab {
	t.Helper()
	lab, err := NewAuto(Tables(games.Tables), Games(games.Games))
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	return lab
}

func TestLabCatalog(t *testing.T) {
	lab := newTestLab(t)
	if got := len(lab.IDs()); got != 8 {
		t.Fatalf("want 8 games, got %d (%v)", got, lab.IDs())
	}
	for _, id := range []string{"atc", "bermuda", "checkoutchallenge", "game121", "numbers-warmup", "sectionhit", "shanghai", "x01"} {
		e, ok := lab.EntryByID(id)
		if !ok {
			t.Fatalf("missing game %s", id)
		}
		if e.MaxLevel() < 1 {
			t.Fatalf("%s: no levels", id)
		}
		lv, err := lab.MapLevel(id, 1)
		if err != nil {
			t.Fatalf("%s: MapLevel: %v", id, err)
		}
		if lv < 1 || lv > e.MaxLevel() {
			t.Fatalf("%s: mapped level %d out of [1,%d]", id, lv, e.MaxLevel())
		}
	}
	sum, err := lab.Summary()
	if err != nil || len(sum) != 8 {
		t.Fatalf("Summary: %v len=%d", err, len(sum))
	}
	if _, err := lab.MapLevel("darts-golf", 1); !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown game should be NotFound, got %v", err)
	}
	if _, err := lab.NewSession("darts-golf", 1, false, nil, 1); !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown game should be NotFound, got %v", err)
	}
}

func TestLabRequiresSources(t *testing.T) {
	if _, err := New(nil, Games(games.Games)); err == nil {
		t.Fatalf("expected error without tables")
	}
	if _, err := New(Tables(games.Tables), nil); err == nil {
		t.Fatalf("expected error without registry")
	}
}

func TestSessionSeedReproducible(t *testing.T) {
	lab := newTestLab(t)
	for _, id := range lab.IDs() {
		a, err := lab.NewSession(id, 3, false, nil, 4242)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		b, _ := lab.NewSession(id, 3, false, nil, 4242)
		ba, bb := bot.New(0.6, 9), bot.New(0.6, 9)
		ba.Play(a, 30)
		bb.Play(b, 30)
		if !reflect.DeepEqual(a.Progress(), b.Progress()) {
			t.Fatalf("%s: same seed diverged\n%+v\n%+v", id, a.Progress(), b.Progress())
		}
		if !reflect.DeepEqual(a.FinalStats(), b.FinalStats()) {
			t.Fatalf("%s: final stats diverged", id)
		}
	}
}

func TestParseOp(t *testing.T) {
	for s, want := range map[string]Op{"view": OpView, "throw": OpThrow, "next": OpNext, "undo": OpUndo} {
		got, err := ParseOp(s)
		if err != nil || got != want {
			t.Fatalf("ParseOp(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseOp("redo"); !errs.Is(err, errs.Warn) {
		t.Fatalf("unknown op should be Warn, got %v", err)
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRuntime(t *testing.T, opts RuntimeOptions) (*SessionRuntime, *fakeClock) {
	t.Helper()
	rt, err := newTestLab(t).BuildRuntime(opts)
	if err != nil {
		t.Fatalf("BuildRuntime: %v", err)
	}
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rt.now = clk.now
	t.Cleanup(rt.Close)
	return rt, clk
}

// playOut 用機器人把 session 打到終局。
func playOut(t *testing.T, rt *SessionRuntime, v dto.SessionView) dto.SessionView {
	t.Helper()
	ctx := context.Background()
	b := bot.New(1, 11)
	info := game.Info{GameID: v.GameID, Level: v.Level, Training: v.Training, Input: v.Input, Category: v.Category, Seed: v.Seed}
	var err error
	for i := 0; i < 2000 && !v.View.Finished; i++ {
		if v, err = rt.Throw(ctx, v.ID, b.ThrowAt(info, v.View)); err != nil {
			t.Fatalf("throw: %v", err)
		}
		if !v.Accepted {
			if v, err = rt.Next(ctx, v.ID); err != nil {
				t.Fatalf("next: %v", err)
			}
		}
	}
	if !v.View.Finished {
		t.Fatalf("match did not finish: %+v", v.View)
	}
	return v
}

func TestRuntimeCreateAndOps(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	ctx := context.Background()
	lv := 2
	v, err := rt.Create(ctx, dto.CreateSessionRequest{Player: "kai", Game: "atc", Level: &lv, Seed: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.ID == "" || v.GameID != "atc" || v.Level != 2 || v.Seed != 5 || !v.Accepted {
		t.Fatalf("unexpected view: %+v", v)
	}
	// 依標題也能建立
	if _, err := rt.Create(ctx, dto.CreateSessionRequest{Game: "Around The Clock"}); err != nil {
		t.Fatalf("Create by title: %v", err)
	}
	if rt.Len() != 2 {
		t.Fatalf("want 2 live sessions, got %d", rt.Len())
	}

	v, err = rt.Throw(ctx, v.ID, dart.Throw{Value: 10, Mult: 1})
	if err != nil {
		t.Fatalf("Throw: %v", err)
	}
	if len(v.View.Darts) == 0 || v.Undo == 0 {
		t.Fatalf("throw not recorded: %+v", v)
	}
	v, err = rt.Undo(ctx, v.ID)
	if err != nil || !v.Accepted || v.Undo != 0 {
		t.Fatalf("Undo: %v %+v", err, v)
	}
	// 沒有可 undo 的步驟：拒絕但不是錯誤
	v, err = rt.Undo(ctx, v.ID)
	if err != nil || v.Accepted {
		t.Fatalf("empty undo should be rejected without error: %v %+v", err, v)
	}

	if _, err := rt.View(ctx, "nope"); !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown session should be NotFound, got %v", err)
	}
	if _, err := rt.Create(ctx, dto.CreateSessionRequest{Game: "nope"}); !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown game should be NotFound, got %v", err)
	}
	if _, err := rt.Create(ctx, dto.CreateSessionRequest{}); !errs.Is(err, errs.Warn) {
		t.Fatalf("missing game should be Warn, got %v", err)
	}

	if err := rt.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := rt.Delete(ctx, v.ID); !errs.Is(err, errs.NotFound) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestRuntimePlayerLevelMapping(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	ctx := context.Background()
	pl := 40
	v, err := rt.Create(ctx, dto.CreateSessionRequest{Game: "atc", PlayerLevel: &pl})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want, _ := rt.Lab().MapLevel("atc", pl)
	if v.Level != want {
		t.Fatalf("level want %d, got %d", want, v.Level)
	}
}

func TestRuntimeSweep(t *testing.T) {
	rt, clk := newTestRuntime(t, RuntimeOptions{TTL: time.Minute})
	ctx := context.Background()
	old, _ := rt.Create(ctx, dto.CreateSessionRequest{Game: "x01"})
	clk.advance(40 * time.Second)
	fresh, _ := rt.Create(ctx, dto.CreateSessionRequest{Game: "x01"})
	clk.advance(30 * time.Second)

	if n := rt.Sweep(); n != 1 {
		t.Fatalf("want 1 evicted, got %d", n)
	}
	if _, err := rt.View(ctx, old.ID); !errs.Is(err, errs.NotFound) {
		t.Fatalf("evicted session should be NotFound, got %v", err)
	}
	// View 也會刷新閒置時間
	if _, err := rt.View(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session: %v", err)
	}
	clk.advance(50 * time.Second)
	if n := rt.Sweep(); n != 0 {
		t.Fatalf("touched session should survive, evicted %d", n)
	}
	if m := rt.Metrics(); m.Evicted != 1 || m.Created != 2 || m.Live != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestRuntimeSessionLimit(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{MaxSessions: 1})
	ctx := context.Background()
	if _, err := rt.Create(ctx, dto.CreateSessionRequest{Game: "shanghai"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := rt.Create(ctx, dto.CreateSessionRequest{Game: "shanghai"}); !errs.Is(err, errs.Conflict) {
		t.Fatalf("limit should be Conflict, got %v", err)
	}
}

func TestRuntimeFinish(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	ctx := context.Background()
	st := store.NewMemory()

	v, err := rt.Create(ctx, dto.CreateSessionRequest{Player: "kai", Game: "atc", Seed: 77})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := rt.Finish(ctx, v.ID, "", st); !errs.Is(err, errs.Conflict) {
		t.Fatalf("unfinished session should be Conflict, got %v", err)
	}
	if _, err := rt.Finish(ctx, v.ID, "", nil); !errs.Is(err, errs.Fatal) {
		t.Fatalf("nil store should be Fatal, got %v", err)
	}

	v = playOut(t, rt, v)
	fr, err := rt.Final(ctx, v.ID)
	if err != nil || !fr.Finished {
		t.Fatalf("Final: %v %+v", err, fr)
	}
	rec, err := rt.Finish(ctx, v.ID, "", st)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if rec.Player != "kai" || rec.GameID != "atc" || rec.XP != fr.Final.XP || rec.SR != fr.Final.SR {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, err := rt.Finish(ctx, v.ID, "", st); !errs.Is(err, errs.Conflict) {
		t.Fatalf("second finish should be Conflict, got %v", err)
	}
	p, err := st.Profile(ctx, "kai")
	if err != nil || p.Games != 1 || p.TotalXP != rec.XP {
		t.Fatalf("profile: %v %+v", err, p)
	}
	if v, _ := rt.View(ctx, v.ID); !v.Saved {
		t.Fatalf("view should report saved")
	}
	if m := rt.Metrics(); m.Finished != 1 {
		t.Fatalf("finished counter: %+v", m)
	}
}

type panicEngine struct{ game.Engine }

func (panicEngine) Throw(dart.Throw) bool { panic("boom") }

func TestRuntimePanicRemovesSession(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	ctx := context.Background()
	v, _ := rt.Create(ctx, dto.CreateSessionRequest{Game: "x01"})

	rt.mu.Lock()
	s := rt.sessions[v.ID]
	s.eng = panicEngine{s.eng}
	rt.mu.Unlock()

	if _, err := rt.Throw(ctx, v.ID, dart.Throw{Value: 20, Mult: 1}); !errs.Is(err, errs.Fatal) {
		t.Fatalf("panic should surface as Fatal, got %v", err)
	}
	if _, err := rt.View(ctx, v.ID); !errs.Is(err, errs.NotFound) {
		t.Fatalf("panicked session should be removed, got %v", err)
	}
	if m := rt.Metrics(); m.Panics != 1 {
		t.Fatalf("panic counter: %+v", m)
	}
}

type panicFinalEngine struct{ game.Engine }

func (panicFinalEngine) FinalStats() dart.FinalStats { panic("boom") }

func TestRuntimeFinalGuardsBrokenSession(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	ctx := context.Background()
	v, _ := rt.Create(ctx, dto.CreateSessionRequest{Game: "x01"})

	rt.mu.Lock()
	s := rt.sessions[v.ID]
	rt.mu.Unlock()

	s.mu.Lock()
	s.broken = true
	s.mu.Unlock()
	if _, err := rt.Final(ctx, v.ID); !errs.Is(err, errs.Fatal) {
		t.Fatalf("broken session must not report final stats, got %v", err)
	}

	w, _ := rt.Create(ctx, dto.CreateSessionRequest{Game: "x01"})
	rt.mu.Lock()
	s = rt.sessions[w.ID]
	s.eng = panicFinalEngine{s.eng}
	rt.mu.Unlock()
	if _, err := rt.Final(ctx, w.ID); !errs.Is(err, errs.Fatal) {
		t.Fatalf("final panic should surface as Fatal, got %v", err)
	}
	if _, err := rt.View(ctx, w.ID); !errs.Is(err, errs.NotFound) {
		t.Fatalf("panicked session should be removed, got %v", err)
	}
	if m := rt.Metrics(); m.Panics != 1 {
		t.Fatalf("panic counter: %+v", m)
	}
}

func TestRuntimeClose(t *testing.T) {
	rt, _ := newTestRuntime(t, RuntimeOptions{})
	rt.Close()
	rt.Close()
	if !rt.Closed() || rt.ClosedReason() != "closed" {
		t.Fatalf("closed=%v reason=%q", rt.Closed(), rt.ClosedReason())
	}
	if _, err := rt.Create(context.Background(), dto.CreateSessionRequest{Game: "x01"}); !errs.Is(err, errs.Fatal) {
		t.Fatalf("closed runtime should be Fatal, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rt2, _ := newTestRuntime(t, RuntimeOptions{})
	if _, err := rt2.View(ctx, "x"); err == nil {
		t.Fatalf("canceled ctx should fail")
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	lab := newTestLab(t)
	p := SimParams{Level: 3, Skill: 0.7}
	a, err := lab.NewSimulator("atc", 99)
	if err != nil {
		t.Fatalf("NewSimulator: %v", err)
	}
	b, _ := lab.NewSimulator("atc", 99)
	ra, _, err := a.SimMP(p, 20, 3, false)
	if err != nil {
		t.Fatalf("SimMP: %v", err)
	}
	rb, _, _ := b.SimMP(p, 20, 3, false)
	if ra.Summary.Matches != 60 {
		t.Fatalf("want 60 matches, got %d", ra.Summary.Matches)
	}
	if !reflect.DeepEqual(ra.Summary, rb.Summary) || !reflect.DeepEqual(ra.Dist, rb.Dist) {
		t.Fatalf("same seed diverged\n%+v\n%+v", ra.Summary, rb.Summary)
	}
	if ra.Summary.Level != 3 || ra.Summary.GameID != "atc" {
		t.Fatalf("summary header: %+v", ra.Summary)
	}
}

func TestSimulatorLevelClampAndValidation(t *testing.T) {
	lab := newTestLab(t)
	s, _ := lab.NewSimulator("shanghai", 3)
	rep, _, err := s.Sim(SimParams{Level: 999, Skill: 0.5}, 5, false)
	if err != nil {
		t.Fatalf("Sim: %v", err)
	}
	e, _ := lab.EntryByID("shanghai")
	if rep.Summary.Level != e.MaxLevel() {
		t.Fatalf("level should clamp to %d, got %d", e.MaxLevel(), rep.Summary.Level)
	}
	bad := []struct {
		p       SimParams
		matches int
		mp      int
	}{
		{SimParams{Skill: 0.5}, 0, 1},
		{SimParams{Skill: 0.5}, 1, 0},
		{SimParams{Skill: 1.5}, 1, 1},
		{SimParams{Skill: 0.5, MaxRounds: -1}, 1, 1},
	}
	for i, c := range bad {
		if _, _, err := s.SimMP(c.p, c.matches, c.mp, false); !errs.Is(err, errs.Warn) {
			t.Fatalf("case %d: want Warn, got %v", i, err)
		}
	}
	if _, err := lab.NewSimulator("nope", 1); !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown game should be NotFound, got %v", err)
	}
}

func TestSimLevels(t *testing.T) {
	lab := newTestLab(t)
	s, _ := lab.NewSimulator("sectionhit", 17)
	curve, _, err := s.SimLevels(0.8, 4, 2, false)
	if err != nil {
		t.Fatalf("SimLevels: %v", err)
	}
	e, _ := lab.EntryByID("sectionhit")
	if len(curve.Points) != e.MaxLevel() {
		t.Fatalf("want %d points, got %d", e.MaxLevel(), len(curve.Points))
	}
	for i, pt := range curve.Points {
		if pt.Level != i+1 || pt.Matches != 8 {
			t.Fatalf("point %d: %+v", i, pt)
		}
	}
	if lv := curve.Recommend(0.5); lv < 1 || lv > e.MaxLevel() {
		t.Fatalf("recommend out of range: %d", lv)
	}
}

func TestSeedMakerNeverZero(t *testing.T) {
	sm := newSeedMaker(0)
	seen := map[int64]bool{}
	for range 1000 {
		v := sm.next()
		if v <= 0 {
			t.Fatalf("seed must be positive, got %d", v)
		}
		if seen[v] {
			t.Fatalf("seed repeated: %d", v)
		}
		seen[v] = true
	}
}
