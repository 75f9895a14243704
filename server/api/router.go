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

package api

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/dartlab"
	v1 "github.com/zintix-labs/dartlab/server/api/v1"
	"github.com/zintix-labs/dartlab/server/netsvr"
	"github.com/zintix-labs/dartlab/server/netsvr/middleware"
	"github.com/zintix-labs/dartlab/server/svrcfg"
)

// RegisterRoutes 註冊
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *dartlab.SessionRuntime) error {
	registerMiddleware(svr, sCfg.Log)   // 1. 註冊 middleware
	svr.Get("/healthz", healthz(rt))    // 2. 健康檢查
	return registerV1API(svr, sCfg, rt) // 3. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

func healthz(rt *dartlab.SessionRuntime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.Closed() {
			http.Error(w, "closed: "+rt.ClosedReason(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, rt *dartlab.SessionRuntime) error {
	h, err := v1.NewHandler(sCfg, rt)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/games", h.Games)
		vOne.Get("/games/{game}/training", h.Training)
		vOne.Get("/games/{game}/level", h.Level)

		vOne.Post("/sessions", h.CreateSession)
		vOne.Get("/sessions/{id}", h.GetSession)
		vOne.Delete("/sessions/{id}", h.DeleteSession)
		vOne.Post("/sessions/{id}/throw", h.Throw)
		vOne.Post("/sessions/{id}/next", h.Next)
		vOne.Post("/sessions/{id}/undo", h.Undo)
		vOne.Get("/sessions/{id}/final", h.Final)
		vOne.Post("/sessions/{id}/finish", h.Finish)
		vOne.Get("/sessions/{id}/live", h.Live)

		vOne.Get("/players/{player}", h.Player)
		vOne.Get("/players/{player}/matches", h.Matches)

		vOne.Post("/sim", h.Sim)
		vOne.Get("/runtime", h.Runtime)
	})
	return nil
}
