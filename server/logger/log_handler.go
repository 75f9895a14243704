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

// Package logger 組裝服務用的 slog logger。
//
// 開發模式寫 stderr 純文字；正式模式寫 stdout JSON；靜默模式全部丟棄。
// 三種模式都可以再包一層 AsyncHandler，讓請求路徑不等待 I/O。
package logger

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

// ParseMode 把字串轉成 LogMode，接受 "prod" 與 "ModeProd" 兩種寫法，未知值視為 ModeDev。
func ParseMode(s string) LogMode {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "Mode")) {
	case "prod":
		return ModeProd
	case "silence":
		return ModeSilence
	default:
		return ModeDev
	}
}

func (m LogMode) String() string {
	switch m {
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "dev"
	}
}

// NewDefaultLogger 同步 logger，測試與 CLI 使用。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, os.Stderr, os.Stdout))
}

// NewAsync 服務用的非同步 logger，每筆 log 都帶 svc=dartlab。
// 回傳的 *AsyncHandler 需在關機時 Close，才會把佇列寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	base := buildHandler(mode, os.Stderr, os.Stdout).WithAttrs([]slog.Attr{slog.String("svc", "dartlab")})
	ah := NewAsyncHandler(base, buf)
	return slog.New(ah), ah
}

// Session 帶上 session 身分的子 logger。
func Session(log *slog.Logger, id, gameID string) *slog.Logger {
	if log == nil {
		log = slog.Default()
	}
	return log.With(slog.Group("session", slog.String("id", id), slog.String("game", gameID)))
}

// buildHandler dev 寫 devOut，prod 寫 prodOut。
func buildHandler(mode LogMode, devOut, prodOut io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		return slog.NewJSONHandler(prodOut, &slog.HandlerOptions{
			Level:       slog.LevelInfo,
			ReplaceAttr: durationMillis,
		})
	case ModeSilence:
		// Enabled 永遠 false，不會進 async 佇列
		return slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(math.MaxInt),
		})
	default:
		return slog.NewTextHandler(devOut, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
}

// durationMillis JSON 裡的 time.Duration 一律輸出毫秒（float），方便 log 平台做數值查詢。
func durationMillis(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindDuration {
		return slog.Float64(a.Key+"_ms", float64(a.Value.Duration())/float64(time.Millisecond))
	}
	return a
}

// AsyncHandler 把任意 slog.Handler 變成非阻塞：
//   - Handle 只做 enqueue，由背景 goroutine 逐筆寫出。
//   - 佇列滿或已 Close 時直接丟棄並計數，延遲不會傳回請求路徑。
//
// slog.Logger 會忽略 Handle 回傳的 error，寫出失敗需由下層 handler 自行處理。
type AsyncHandler struct {
	next slog.Handler
	d    *dispatcher
}

type dispatcher struct {
	ch      chan entry
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時為 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev, os.Stderr, os.Stdout)
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &dispatcher{
		ch:     make(chan entry, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return &AsyncHandler{next: next, d: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.d != nil
}

// Dropped 因佇列滿或關閉後寫入而丟棄的筆數。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.d.dropped.Load()
}

// Close 停止接收並寫完佇列中的 log，可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.d.once.Do(func() { close(h.d.closed) })
	h.d.wg.Wait()
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case e := <-d.ch:
			e.write()
		case <-d.closed:
			for {
				select {
				case e := <-d.ch:
					e.write()
				default:
					return
				}
			}
		}
	}
}

func (e entry) write() {
	if e.h != nil {
		_ = e.h.Handle(e.ctx, e.rec)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.d.closed:
		h.d.dropped.Add(1)
		return nil
	default:
	}
	// Record 內的 attrs 可能被呼叫端重用，跨 goroutine 前先 Clone
	select {
	case h.d.ch <- entry{ctx: context.WithoutCancel(ctx), rec: r.Clone(), h: h.next}:
	default:
		h.d.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d}
}
