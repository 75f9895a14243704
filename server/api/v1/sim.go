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

	"github.com/zintix-labs/dartlab"
	"github.com/zintix-labs/dartlab/dto"
	"github.com/zintix-labs/dartlab/stats"
)

// simResponse 內部結構 不影響外部 也不被外部使用
type simResponse struct {
	Stats    *stats.SimReport `json:"stats"`
	Seed     int64            `json:"seed"`
	Workers  int              `json:"workers"`
	UsedTime int64            `json:"used_ms"`
}

// Sim POST /v1/sim：機器人模擬報表。
//
// rounds 平均分給 workers，實際場數為 floor(rounds/workers)*workers。
func (h *Handler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		h.fail(w, "sim", err)
		return
	}
	sim, err := h.lab.NewSimulator(req.Game, req.Seed)
	if err != nil {
		h.fail(w, "sim", err)
		return
	}
	workers := min(req.Workers, h.maxWorkers, req.Rounds)
	rep, used, err := sim.SimMP(dartlab.SimParams{
		Level:    req.Level,
		Training: req.Training,
		Skill:    req.Skill,
	}, req.Rounds/workers, workers, false)
	if err != nil {
		h.fail(w, "sim", err)
		return
	}
	writeJSON(w, http.StatusOK, simResponse{
		Stats:    rep,
		Seed:     sim.Seed(),
		Workers:  workers,
		UsedTime: used.Milliseconds(),
	})
}
