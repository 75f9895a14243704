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

// Package v1 提供 /v1 底下的 HTTP handlers。
package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/server/httperr"
	"github.com/zintix-labs/dartlab/server/svrcfg"
	"github.com/zintix-labs/dartlab/store"
)

// ============================================================
// ** Handler **
// ============================================================

// Handler 持有 /v1 所需的全部依賴。
type Handler struct {
	lab        *dartlab.Lab
	rt         *dartlab.SessionRuntime
	st         store.Store
	log        *slog.Logger
	timeout    time.Duration
	maxWorkers int
}

func NewHandler(sCfg *svrcfg.SvrCfg, rt *dartlab.SessionRuntime) (*Handler, error) {
	if rt == nil {
		return nil, errs.NewFatal("session runtime is required")
	}
	return &Handler{
		lab:        sCfg.Lab,
		rt:         rt,
		st:         sCfg.Store,
		log:        sCfg.Log,
		timeout:    sCfg.Opt.RequestTimeout,
		maxWorkers: sCfg.Opt.MaxSimWorkers,
	}, nil
}

// ctx 請求解析完成後設置超時 context
func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// Runtime GET /v1/runtime：session 管理器的觀測快照。
func (h *Handler) Runtime(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.rt.Metrics())
}
