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
	"github.com/zintix-labs/dartlab/errs"
)

// Games GET /v1/games
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	sum, err := h.lab.Summary()
	if err != nil {
		h.fail(w, "games", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Training GET /v1/games/{game}/training
func (h *Handler) Training(w http.ResponseWriter, r *http.Request) {
	tc, err := h.lab.TrainingConfig(param(r, "game"))
	if err != nil {
		h.fail(w, "training", err)
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

// Level GET /v1/games/{game}/level?player_level=N
func (h *Handler) Level(w http.ResponseWriter, r *http.Request) {
	pl, err := dto.QueryInt(r, "player_level", 0)
	if err != nil {
		h.fail(w, "level", err)
		return
	}
	if pl < 1 {
		h.fail(w, "level", errs.NewWarn("player_level must be >= 1"))
		return
	}
	e, ok := h.lab.EntryByID(param(r, "game"))
	if !ok {
		h.fail(w, "level", errs.NotFoundf("game %q does not exist", param(r, "game")))
		return
	}
	lv, err := h.lab.MapLevel(e.GameID, pl)
	if err != nil {
		h.fail(w, "level", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LevelMapping{
		GameID:      e.GameID,
		PlayerLevel: pl,
		Level:       lv,
		MaxLevel:    e.MaxLevel(),
	})
}
