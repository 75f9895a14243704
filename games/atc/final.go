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

package atc

import (
	"fmt"
	"math"

	"github.com/zintix-labs/dartlab/sdk/dart"
)

// Final 結算。終局前呼叫也安全。
func (r *rules) Final(s State) dart.FinalStats {
	net := s.Net()
	won := net >= r.cfg.MinPoints && s.Index >= len(r.cfg.Targets) && s.Round <= r.cfg.Rounds
	hitRate := s.Tally.HitRate()
	lv := float64(r.info.Level)

	sr := 0
	if !r.info.Training {
		eff := math.Min(1, float64(s.Points)/1000)
		sr = dart.ClampSR(hitRate*150 + eff*30 + lv*2)
	}

	base := 100.0
	if won {
		base = 780 + lv*21
	}
	xp := base + float64(s.Tally.MaxStreak*12) + float64(s.Tally.Triples*20) + hitRate*250

	mode := fmt.Sprintf("ATC Level %d", r.info.Level)
	if r.info.Training {
		mode = "ATC Training"
	}
	return dart.FinalStats{
		XP:  dart.ScaleXP(xp, r.info.Training),
		SR:  sr,
		Won: won,
		Stats: dart.TallyFields(s.Tally).With(
			dart.F("finalScore", net),
			dart.F("hitRate", dart.Percent(hitRate)),
			dart.F("mode", mode),
		),
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	pool := s.Pool
	v.Pool = &pool
	v.MaxRounds = r.cfg.Rounds
	v.Score = s.Net()
	if s.Index < len(r.cfg.Targets) {
		v.Target = r.cfg.Targets[s.Index].Label()
	}
	v.Targets = dart.Labels(r.currentTargets(s))
	v.Progress = fmt.Sprintf("%d/%d", s.Index, len(r.cfg.Targets))
	v.Extra = dart.Fields{
		dart.F("hitsOnTarget", s.HitsOnTarget),
		dart.F("hitsPerTarget", r.cfg.HitsPerTarget),
	}
	return v
}
