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

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/server/api"
	"github.com/zintix-labs/dartlab/server/app"
	"github.com/zintix-labs/dartlab/server/netsvr"
	"github.com/zintix-labs/dartlab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口。
//
// 它負責：
//  1. 驗證 SvrCfg（包含 logger、Lab、Store）。
//  2. 建立 session runtime 與 HTTP server。
//  3. 註冊路由與 middleware。
//  4. 以 app.App 管理 janitor 與 server 的生命週期，回傳停止原因。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都透過 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Opt.Addr, writeTimeout(sCfg)))
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr。
//
// svr 參數必須非 nil，且若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	rt, err := sCfg.Lab.BuildRuntime(sCfg.RuntimeOptions())
	if err != nil {
		sCfg.Log.Error("build runtime", slog.Any("err", err))
		return err
	}
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		sCfg.Log.Error("register routes", slog.Any("err", err))
		return err
	}

	janitor := app.NewWorker(rt.Run, func(ctx context.Context) error {
		rt.Close()
		return sCfg.Store.Close()
	})
	a := app.NewWith(janitor, svr).WithLogger(sCfg.Log)
	sCfg.Log.Info("[dartlab] listening", slog.String("addr", sCfg.Opt.Addr), slog.Int("games", len(sCfg.Lab.IDs())))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// NewHandler 組出完整的 HTTP handler（含 middleware）而不啟動 server，
// 給 httptest 或掛載到既有服務使用。呼叫端負責 rt.Close()。
func NewHandler(sCfg *svrcfg.SvrCfg) (http.Handler, *dartlab.SessionRuntime, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, nil, err
	}
	rt, err := sCfg.Lab.BuildRuntime(sCfg.RuntimeOptions())
	if err != nil {
		return nil, nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Opt.Addr, writeTimeout(sCfg))
	if err := api.RegisterRoutes(svr, sCfg, rt); err != nil {
		return nil, nil, err
	}
	return svr.Handler(), rt, nil
}

// writeTimeout 請求逾時再留一點時間寫出錯誤回覆。
func writeTimeout(sCfg *svrcfg.SvrCfg) time.Duration {
	return max(netsvr.DefaultWriteTimeout, sCfg.Opt.RequestTimeout+5*time.Second)
}
