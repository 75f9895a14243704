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

package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/zintix-labs/dartlab/errs"
)

// Memory 行程內的 Store，給測試與單機模式使用。
type Memory struct {
	mu      sync.RWMutex
	ids     map[string]struct{}
	matches map[string][]MatchRecord // player -> 依寫入順序
}

func NewMemory() *Memory {
	return &Memory{
		ids:     map[string]struct{}{},
		matches: map[string][]MatchRecord{},
	}
}

func (s *Memory) SaveMatch(ctx context.Context, m MatchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Valid(); err != nil {
		return err
	}
	m.Stats = slices.Clone(m.Stats)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[m.ID]; ok {
		return errs.NewConflict("match already saved: " + m.ID)
	}
	s.ids[m.ID] = struct{}{}
	s.matches[m.Player] = append(s.matches[m.Player], m)
	return nil
}

func (s *Memory) Profile(ctx context.Context, player string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	player = strings.TrimSpace(player)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.matches[player]
	if !ok {
		return Profile{}, errs.NotFoundf("player %q has no matches", player)
	}
	p := Profile{Player: player}
	for _, m := range ms {
		p.Add(m)
	}
	return p, nil
}

func (s *Memory) Matches(ctx context.Context, player string, limit int) ([]MatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = normLimit(limit)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms := s.matches[strings.TrimSpace(player)]
	out := make([]MatchRecord, 0, min(limit, len(ms)))
	for i := len(ms) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, ms[i])
	}
	return out, nil
}

func (s *Memory) Close() error { return nil }
