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

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/store"
)

func open(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dartlab.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func match(id string, at time.Time, cat dart.Category, xp, sr int, training bool) store.MatchRecord {
	return store.MatchRecord{
		ID:       id,
		Player:   "kai",
		GameID:   "x01",
		Category: cat,
		Level:    1,
		Training: training,
		Seed:     42,
		Mode:     "X01 501",
		XP:       xp,
		SR:       sr,
		Won:      true,
		Darts:    18,
		Rounds:   6,
		Stats:    dart.Fields{dart.F("mode", "X01 501"), dart.F("darts", 18), dart.F("avg", "83.5")},
		PlayedAt: at,
	}
}

func TestSaveAndProfile(t *testing.T) {
	ctx := context.Background()
	s, _ := open(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, m := range []store.MatchRecord{
		match("m1", base, dart.CatScoring, 300, 90, false),
		match("m2", base.Add(time.Minute), dart.CatScoring, 500, 110, false),
		match("m3", base.Add(2*time.Minute), dart.CatFinishing, 40, 170, true),
	} {
		if err := s.SaveMatch(ctx, m); err != nil {
			t.Fatalf("save #%d: %v", i, err)
		}
	}
	p, err := s.Profile(ctx, "kai")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.TotalXP != 840 || p.Games != 2 || p.Training != 1 || p.Wins != 2 || p.Darts != 36 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.BestSR[dart.CatScoring] != 110 || len(p.BestSR) != 1 {
		t.Fatalf("unexpected best sr: %v", p.BestSR)
	}
	if p.Level != 2 {
		t.Fatalf("level = %d", p.Level)
	}

	ms, err := s.Matches(ctx, "kai", 10)
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if len(ms) != 3 || ms[0].ID != "m3" || !ms[0].Training {
		t.Fatalf("unexpected matches: %+v", ms)
	}
	if ms[2].Stats.Int("darts") != 18 || ms[2].Mode != "X01 501" {
		t.Fatalf("stats not round-tripped: %+v", ms[2].Stats)
	}
	if !ms[2].PlayedAt.Equal(base) {
		t.Fatalf("played_at = %v", ms[2].PlayedAt)
	}
}

func TestDuplicateIsConflict(t *testing.T) {
	ctx := context.Background()
	s, _ := open(t)
	m := match("dup", time.Now(), dart.CatScoring, 1, 1, false)
	if err := s.SaveMatch(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveMatch(ctx, m); !errs.Is(err, errs.Conflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestUnknownPlayer(t *testing.T) {
	s, _ := open(t)
	if _, err := s.Profile(context.Background(), "ghost"); !errs.Is(err, errs.NotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	s, path := open(t)
	if err := s.SaveMatch(ctx, match("keep", time.Now(), dart.CatWarmup, 5, 5, false)); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()
	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	ms, err := s2.Matches(ctx, "kai", 0)
	if err != nil || len(ms) != 1 {
		t.Fatalf("matches after reopen: %v %v", ms, err)
	}
}
