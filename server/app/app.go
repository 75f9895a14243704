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

// Package app 提供應用程式生命週期管理（App），負責統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 優雅關閉的等待上限。
const DefaultShutdownTimeout = 5 * time.Second

// App 啟動所有註冊的 Component，並在收到 OS 信號或任一 Component 結束時協調優雅關閉。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
}

// New 建立一個新的 App 實例。
func New() *App { return &App{timeout: DefaultShutdownTimeout} }

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中，該 Component 將在 Run 時被管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 關閉錯誤改寫到 log；nil 時不記錄。
func (a *App) WithLogger(log *slog.Logger) *App {
	a.log = log
	return a
}

// Run 並行啟動所有 Component，阻塞到收到 SIGINT/SIGTERM 或任一 Component 的 Run 返回。
//   - 收到信號：優雅關閉並回傳 nil。
//   - Component 返回：優雅關閉並回傳該錯誤（可能為 nil）。
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return a.run(quit)
}

func (a *App) run(quit <-chan os.Signal) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-quit:
		a.gracefulShutdown(a.timeout)
		return nil
	case err := <-errCh:
		a.gracefulShutdown(a.timeout)
		return err
	}
}

// gracefulShutdown 在給定的 timeout 內依註冊的反序呼叫所有 Component.Shutdown。
// 後註冊的元件通常依賴先註冊的元件（例如 HTTP server 依賴 session runtime）。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil && a.log != nil {
			a.log.Error("shutdown", slog.Any("err", err))
		}
	}
}
