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

package v1

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/server/httperr"
	"github.com/zintix-labs/dartlab/server/logger"
)

const (
	liveReadLimit     = 4 << 10
	liveMaxDecodeErrs = 3
	liveMaxOpsPerSec  = 20
	livePongWait      = 60 * time.Second
	livePingEvery     = 45 * time.Second
	liveWriteWait     = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Live GET /v1/sessions/{id}/live：websocket 串流。
//
// 連線後先送一次畫面；之後每收到一個 {op, value, mult} 就回傳操作後的 SessionView，
// 錯誤以 ErrorReply 回覆。session 不存在時不升級，直接回 404。
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	first, err := h.rt.View(r.Context(), id)
	if err != nil {
		h.fail(w, "live", err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已自行回覆 HTTP 錯誤
		h.log.Warn("live upgrade", slog.Any("err", err))
		return
	}
	defer conn.Close()
	log := logger.Session(h.log, id, first.GameID)
	log.Debug("live connected", slog.String("remote", r.RemoteAddr))
	defer log.Debug("live closed")

	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	// gorilla 只允許一個 writer：ping 與回覆都走 out
	out := make(chan any, 8)
	done := make(chan struct{})
	pumped := runLivePump(conn, out, done)
	defer func() {
		close(done)
		<-pumped
	}()

	send := func(v any) bool {
		select {
		case out <- v:
			return true
		case <-pumped:
			return false
		}
	}
	if send(first) {
		h.liveLoop(r, conn, id, log, send)
	}
}

func (h *Handler) liveLoop(r *http.Request, conn *websocket.Conn, id string, log *slog.Logger, send func(any) bool) {
	windowStart := time.Now()
	opsInWindow := 0
	decodeErrs := 0
	for {
		var in dto.LiveOp
		if err := conn.ReadJSON(&in); err != nil {
			if !isDecodeErr(err) {
				// 連線關閉、逾時或超過大小
				return
			}
			decodeErrs++
			if !send(httperr.Reply(errs.NewWarn("invalid frame payload"))) || decodeErrs >= liveMaxDecodeErrs {
				return
			}
			continue
		}
		decodeErrs = 0

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			opsInWindow = 0
		}
		opsInWindow++
		if opsInWindow > liveMaxOpsPerSec {
			log.Warn("live rate limit", slog.Int("ops", opsInWindow))
			send(httperr.Reply(errs.NewConflict("rate limit exceeded")))
			return
		}

		op, err := dartlab.ParseOp(in.Op)
		if err != nil {
			if !send(httperr.Reply(err)) {
				return
			}
			continue
		}
		v, err := h.rt.Do(r.Context(), id, op, dto.ThrowRequest{Value: in.Value, Mult: in.Mult}.Throw())
		if err != nil {
			httperr.Log(log, "live op", err)
			// session 已被移除或 runtime 已關閉，不再有可操作的對象
			if !send(httperr.Reply(err)) || errs.Is(err, errs.NotFound) || errs.Is(err, errs.Fatal) {
				return
			}
			continue
		}
		if !send(v) {
			return
		}
	}
}

func isDecodeErr(err error) bool {
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	return errors.As(err, &se) || errors.As(err, &te) || errors.Is(err, io.ErrUnexpectedEOF)
}

// runLivePump 在背景跑 writer；writer 一結束（寫入失敗或 done）就關閉連線，
// 阻塞中的 ReadJSON 會立即返回而不是等到 pong 逾時。
func runLivePump(conn *websocket.Conn, out <-chan any, done <-chan struct{}) <-chan struct{} {
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		defer conn.Close()
		livePump(conn, out, done)
	}()
	return pumped
}

// livePump 唯一的 writer：寫出回覆並定期 ping。
func livePump(conn *websocket.Conn, out <-chan any, done <-chan struct{}) {
	tk := time.NewTicker(livePingEvery)
	defer tk.Stop()
	for {
		select {
		case <-done:
			// 把已排隊的回覆寫完再送 close
			for {
				select {
				case v := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
					_ = conn.WriteJSON(v)
				default:
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(liveWriteWait))
					return
				}
			}
		case v := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(v); err != nil {
				return
			}
		case <-tk.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}
