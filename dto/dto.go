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

package dto

import (
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// SessionView 每次操作後回給呼叫端的完整顯示狀態。
type SessionView struct {
	ID       string           `json:"id"`               // session id (uuid v4)
	GameID   string           `json:"game_id"`          // 遊戲代號
	Title    string           `json:"title"`            // 遊戲名稱
	Player   string           `json:"player,omitempty"` // 建立時帶入的玩家
	Level    int              `json:"level"`            // 實際使用的難度
	Training bool             `json:"training"`         // 練習模式
	Seed     int64            `json:"seed"`             // 可重現用
	Input    dart.Input       `json:"input"`            // board / keypad
	Category dart.Category    `json:"category"`         // SR 分類
	Accepted bool             `json:"accepted"`         // 本次操作是否被引擎接受
	Undo     int              `json:"undo"`             // 可 undo 步數
	Saved    bool             `json:"saved"`            // 結果已寫入 store
	View     dart.View        `json:"view"`             // 引擎顯示狀態
	Final    *dart.FinalStats `json:"final,omitempty"`  // 終局後才有
}

// NewSessionView 由引擎組出 SessionView；終局時附上結算。
func NewSessionView(id, title, player string, eng game.Engine, accepted bool, undo int, saved bool) SessionView {
	info := eng.Info()
	v := SessionView{
		ID:       id,
		GameID:   info.GameID,
		Title:    title,
		Player:   player,
		Level:    info.Level,
		Training: info.Training,
		Seed:     info.Seed,
		Input:    info.Input,
		Category: info.Category,
		Accepted: accepted,
		Undo:     undo,
		Saved:    saved,
		View:     eng.View(),
	}
	if eng.Finished() {
		fs := eng.FinalStats()
		v.Final = &fs
	}
	return v
}

// FinalResult GET /final 的回應；未終局時 Final 為目前進度下的試算。
type FinalResult struct {
	ID       string          `json:"id"`
	GameID   string          `json:"game_id"`
	Finished bool            `json:"finished"`
	Final    dart.FinalStats `json:"final"`
}

// LevelMapping 玩家等級對應的遊戲難度。
type LevelMapping struct {
	GameID      string `json:"game_id"`
	PlayerLevel int    `json:"player_level"`
	Level       int    `json:"level"`
	MaxLevel    int    `json:"max_level"`
}
