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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
)

// maxBody 單一請求 body 上限（1MiB）。
const maxBody = 1 << 20

// CreateSessionRequest POST /v1/sessions。
//
// level 與 player_level 擇一：有 level 直接使用，否則以 player_level 經遊戲的 mapper 換算，
// 兩者都沒有時為難度 1。
type CreateSessionRequest struct {
	Player      string        `json:"player,omitempty"`
	Game        string        `json:"game"`
	Level       *int          `json:"level,omitempty"`
	PlayerLevel *int          `json:"player_level,omitempty"`
	Training    bool          `json:"training,omitempty"`
	Settings    dart.Settings `json:"settings,omitempty"`
	Seed        int64         `json:"seed,omitempty"`
}

func (r *CreateSessionRequest) Valid() error {
	r.Game = strings.TrimSpace(r.Game)
	r.Player = strings.TrimSpace(r.Player)
	if r.Game == "" {
		return errs.NewWarn("game required")
	}
	if r.Level != nil && r.PlayerLevel != nil {
		return errs.NewWarn("level and player_level are exclusive")
	}
	if r.Level != nil && *r.Level < 1 {
		return errs.Warnf("invalid level: %d", *r.Level)
	}
	return nil
}

// ThrowRequest POST /v1/sessions/{id}/throw。
// board 類遊戲只看 mult；value 可省略。
type ThrowRequest struct {
	Value int `json:"value"`
	Mult  int `json:"mult"`
}

func (r ThrowRequest) Throw() dart.Throw {
	return dart.Throw{Value: r.Value, Mult: r.Mult}
}

// FinishRequest POST /v1/sessions/{id}/finish。player 省略時沿用建立 session 時的玩家。
type FinishRequest struct {
	Player string `json:"player,omitempty"`
}

// SimRequest POST /v1/sim。
type SimRequest struct {
	Game     string  `json:"game"`
	Level    int     `json:"level"`
	Training bool    `json:"training,omitempty"`
	Rounds   int     `json:"rounds"` // 模擬場數
	Skill    float64 `json:"skill"`  // 機器人技術 [0,1]
	Seed     int64   `json:"seed,omitempty"`
	Workers  int     `json:"workers,omitempty"`
}

// MaxSimRounds 單一 HTTP 模擬請求的場數上限。
const MaxSimRounds = 200_000

func (r *SimRequest) Valid() error {
	r.Game = strings.TrimSpace(r.Game)
	if r.Game == "" {
		return errs.NewWarn("game required")
	}
	if r.Rounds < 1 || r.Rounds > MaxSimRounds {
		return errs.Warnf("rounds must be in [1,%d], got %d", MaxSimRounds, r.Rounds)
	}
	if r.Skill < 0 || r.Skill > 1 {
		return errs.Warnf("skill must be in [0,1], got %v", r.Skill)
	}
	if r.Level < 1 {
		r.Level = 1
	}
	if r.Workers < 1 {
		r.Workers = 1
	}
	return nil
}

// LiveOp 前端經由 websocket 送出的操作。
type LiveOp struct {
	Op    string `json:"op"` // throw | next | undo | view
	Value int    `json:"value,omitempty"`
	Mult  int    `json:"mult,omitempty"`
}

// ErrorReply HTTP 與 websocket 共用的錯誤回覆。
type ErrorReply struct {
	Error string `json:"error"`
	Level string `json:"level"`
}

// DecodeJSON 把 POST body 解碼成 T。
//
// 空 body 視為零值（方便 next/undo 這類不需要參數的操作）。
// 會對 body 做大小限制並開啟 DisallowUnknownFields()，未知欄位一律拒絕，避免靜默丟資料。
func DecodeJSON[T any](r *http.Request) (*T, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	out := new(T)
	if r.Body == nil {
		return out, nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return out, nil
		}
		return nil, errs.NewWarn(fmt.Sprintf("invalid json: %v", err))
	}
	return out, nil
}

// DecodeCreateSession 解碼並檢查建立 session 的請求。
func DecodeCreateSession(r *http.Request) (*CreateSessionRequest, error) {
	req, err := DecodeJSON[CreateSessionRequest](r)
	if err != nil {
		return nil, err
	}
	if err := req.Valid(); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeSimRequest 解碼並檢查模擬請求。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	req, err := DecodeJSON[SimRequest](r)
	if err != nil {
		return nil, err
	}
	if err := req.Valid(); err != nil {
		return nil, err
	}
	return req, nil
}

// QueryInt 讀 query string 的整數參數；缺省時回傳 def。
func QueryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return v, nil
}
