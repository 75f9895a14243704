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

// Package store 保存已結束的對局並彙整玩家檔案。
//
// 練習模式的對局只累計 XP，不計入場數、鏢數與各分類的最佳 SR。
package store

import (
	"context"
	"strings"
	"time"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/levelsys"
	"github.com/zintix-labs/dartlab/sdk/dart"
)

// DefaultLimit Matches 未指定筆數時的上限。
const DefaultLimit = 20

// MatchRecord 一場已結束的對局。ID 即 session id，重複寫入視為衝突。
type MatchRecord struct {
	ID       string        `json:"id"`
	Player   string        `json:"player"`
	GameID   string        `json:"game_id"`
	Category dart.Category `json:"category"`
	Level    int           `json:"level"`
	Training bool          `json:"training"`
	Seed     int64         `json:"seed"`
	Mode     string        `json:"mode"`
	XP       int           `json:"xp"`
	SR       int           `json:"sr"`
	Won      bool          `json:"won"`
	Darts    int           `json:"darts"`
	Rounds   int           `json:"rounds"`
	Stats    dart.Fields   `json:"stats"`
	PlayedAt time.Time     `json:"played_at"`
}

// Valid 檢查必要欄位並正規化玩家名稱。
func (m *MatchRecord) Valid() error {
	m.ID = strings.TrimSpace(m.ID)
	m.Player = strings.TrimSpace(m.Player)
	if m.ID == "" {
		return errs.NewWarn("match id required")
	}
	if m.Player == "" {
		return errs.NewWarn("player required")
	}
	if m.GameID == "" {
		return errs.NewWarn("game id required")
	}
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now().UTC()
	}
	return nil
}

// Profile 玩家檔案。
type Profile struct {
	Player   string                 `json:"player"`
	TotalXP  int                    `json:"total_xp"`
	Level    int                    `json:"level"`
	Games    int                    `json:"games"`
	Training int                    `json:"training_games"`
	Wins     int                    `json:"wins"`
	Darts    int                    `json:"darts"`
	BestSR   map[dart.Category]int  `json:"best_sr"`
	Progress levelsys.LevelProgress `json:"progress"`
}

// Add 把一場對局累加進檔案。
func (p *Profile) Add(m MatchRecord) {
	if p.BestSR == nil {
		p.BestSR = map[dart.Category]int{}
	}
	p.TotalXP += m.XP
	if m.Training {
		p.Training++
	} else {
		p.Games++
		p.Darts += m.Darts
		if m.Won {
			p.Wins++
		}
		if m.SR > p.BestSR[m.Category] {
			p.BestSR[m.Category] = m.SR
		}
	}
	p.Level = levelsys.Level(p.TotalXP)
	p.Progress = levelsys.Progress(p.TotalXP)
}

// Store 對局結果的持久層。
type Store interface {
	// SaveMatch 寫入一場已結束的對局；同一個 ID 第二次寫入回傳 Conflict。
	SaveMatch(ctx context.Context, m MatchRecord) error
	// Profile 玩家檔案；沒有任何紀錄時回傳 NotFound。
	Profile(ctx context.Context, player string) (Profile, error)
	// Matches 最近的對局，新到舊。
	Matches(ctx context.Context, player string, limit int) ([]MatchRecord, error)
	Close() error
}

func normLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, 500)
}
