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

package bermuda

import (
	"fmt"
	"math"

	"github.com/zintix-labs/dartlab/sdk/dart"
)

func (r *rules) Final(s State) dart.FinalStats {
	won := s.Points >= r.cfg.MinPoints && s.Index >= len(r.cfg.Targets) && s.Round <= r.cfg.Rounds
	hitRate := s.Tally.HitRate()
	lv := float64(r.info.Level)

	sr := 0
	if !r.info.Training {
		eff := math.Min(1, float64(s.Points)/1200)
		sr = dart.ClampSR(hitRate*150 + eff*30)
	}

	base := 100.0
	if won {
		base = 640 + lv*60
	}
	xp := base + float64(s.Tally.Triples*50) + float64(s.Tally.Doubles*25) + hitRate*250

	mode := fmt.Sprintf("Bermuda Level %d", r.info.Level)
	if r.info.Training {
		mode = "Bermuda Training"
	}
	return dart.FinalStats{
		XP:  dart.ScaleXP(xp, r.info.Training),
		SR:  sr,
		Won: won,
		Stats: dart.TallyFields(s.Tally).With(
			dart.F("halvings", s.Halvings),
			dart.F("finalScore", s.Points),
			dart.F("accuracy", dart.Percent(hitRate)),
			dart.F("mode", mode),
		),
	}
}

func (r *rules) View(s State) dart.View {
	v := dart.BaseView(s.Progress)
	pool := s.Pool
	v.Pool = &pool
	v.MaxRounds = r.cfg.Rounds
	v.Score = s.Points
	if s.Index < len(r.cfg.Targets) {
		tg := r.cfg.Targets[s.Index]
		v.Target = tg.Label()
		v.Targets = dart.Labels([]dart.Target{tg, tg, tg})
	}
	v.Progress = fmt.Sprintf("%d/%d", s.Index, len(r.cfg.Targets))
	v.Extra = dart.Fields{
		dart.F("hitInRound", s.HitInRound),
		dart.F("halvings", s.Halvings),
	}
	return v
}
