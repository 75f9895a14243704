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
	"net/http"

	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/store"
)

// Player GET /v1/players/{player}：累計資料與等級進度。
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.st.Profile(ctx, param(r, "player"))
	if err != nil {
		h.fail(w, "player profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Matches GET /v1/players/{player}/matches?limit=N：最近的對局，新到舊。
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	limit, err := dto.QueryInt(r, "limit", store.DefaultLimit)
	if err != nil {
		h.fail(w, "player matches", err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	ms, err := h.st.Matches(ctx, param(r, "player"), limit)
	if err != nil {
		h.fail(w, "player matches", err)
		return
	}
	if ms == nil {
		ms = []store.MatchRecord{}
	}
	writeJSON(w, http.StatusOK, ms)
}
