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
	"log/slog"
	"net/http"

	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/server/logger"
)

// CreateSession POST /v1/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeCreateSession(r)
	if err != nil {
		h.fail(w, "create session", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.rt.Create(ctx, *req)
	if err != nil {
		h.fail(w, "create session", err)
		return
	}
	logger.Session(h.log, v.ID, v.GameID).Debug("session created",
		slog.Int("level", v.Level), slog.Bool("training", v.Training), slog.Int64("seed", v.Seed))
	writeJSON(w, http.StatusCreated, v)
}

// GetSession GET /v1/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.rt.View(ctx, param(r, "id"))
	if err != nil {
		h.fail(w, "view session", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Throw POST /v1/sessions/{id}/throw
//
// 引擎拒絕的操作仍回 200，accepted=false。
func (h *Handler) Throw(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.ThrowRequest](r)
	if err != nil {
		h.fail(w, "throw", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.rt.Throw(ctx, param(r, "id"), req.Throw())
	if err != nil {
		h.fail(w, "throw", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Next POST /v1/sessions/{id}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.rt.Next(ctx, param(r, "id"))
	if err != nil {
		h.fail(w, "next round", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Undo POST /v1/sessions/{id}/undo
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.rt.Undo(ctx, param(r, "id"))
	if err != nil {
		h.fail(w, "undo", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Final GET /v1/sessions/{id}/final
func (h *Handler) Final(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	res, err := h.rt.Final(ctx, param(r, "id"))
	if err != nil {
		h.fail(w, "final", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Finish POST /v1/sessions/{id}/finish：結算寫入 store，未終局回 409。
func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeJSON[dto.FinishRequest](r)
	if err != nil {
		h.fail(w, "finish", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	rec, err := h.rt.Finish(ctx, param(r, "id"), req.Player, h.st)
	if err != nil {
		h.fail(w, "finish", err)
		return
	}
	logger.Session(h.log, rec.ID, rec.GameID).Info("match saved",
		slog.String("player", rec.Player), slog.Int("xp", rec.XP), slog.Int("sr", rec.SR), slog.Bool("won", rec.Won))
	writeJSON(w, http.StatusCreated, rec)
}

// DeleteSession DELETE /v1/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.rt.Delete(ctx, param(r, "id")); err != nil {
		h.fail(w, "delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
