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

// Package bermuda 目標序列混合數字與符號目標（D / T / B / D18 / T15），
// 一輪內只要命中一次，輪末才前進到下一個目標；落空以「分數減半」懲罰。
package bermuda

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "bermuda"

type Config struct {
	Targets     []dart.Target `yaml:"targets"`
	Rounds      int           `yaml:"rounds"`
	StartLives  float64       `yaml:"start_lives"`
	StartEnergy float64       `yaml:"start_energy"`
	MinPoints   int           `yaml:"min_points"`
}

func (c *Config) Valid() error {
	if len(c.Targets) == 0 {
		return errs.NewFatal("bermuda: empty targets")
	}
	if c.Rounds < 1 {
		return errs.Fatalf("bermuda: invalid rounds %d", c.Rounds)
	}
	if c.StartLives < 0 || c.StartEnergy < 0 {
		return errs.NewFatal("bermuda: negative start budget")
	}
	return nil
}

// pool 命中回復 1，上限為起始值。
func (c Config) pool() dart.PoolRule {
	return dart.PoolRule{
		Energy: dart.Gauge{Start: c.StartEnergy, Regen: 1},
		Lives:  dart.Gauge{Start: c.StartLives, Regen: 1},
	}
}

var table = setting.MustLoad[Config](tables.FS, "bermuda.yaml")

func Table() *setting.Table[Config] { return table }

var (
	stdTargets = []dart.Target{
		dart.Num(12), dart.Num(13), dart.Num(14), dart.AnyDoubleTarget(),
		dart.Num(15), dart.Num(16), dart.Num(17), dart.AnyTripleTarget(),
		dart.Num(18), dart.Num(19), dart.Num(20), dart.BullseyeTarget(),
	}
	fullTargets = func() []dart.Target {
		out := dart.Span(1, 10)
		out = append(out, dart.AnyDoubleTarget())
		out = append(out, dart.Span(11, 15)...)
		out = append(out, dart.AnyTripleTarget())
		out = append(out, dart.Span(16, 20)...)
		return append(out, dart.BullseyeTarget())
	}()
)

func trainingConfig(s dart.Settings) Config {
	targets := stdTargets
	if s.String("mode", "std") == "full" {
		targets = fullTargets
	}
	return Config{
		Targets:     targets,
		Rounds:      999,
		StartLives:  float64(s.PositiveInt("lives", 3)),
		StartEnergy: 3,
		MinPoints:   0,
	}
}

func Build(p game.Params) (game.Engine, error) {
	info := table.Info(p)
	var cfg Config
	if p.Training {
		cfg = trainingConfig(p.Settings)
	} else {
		cfg, _ = table.Lookup(info.Level)
	}
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	r := &rules{cfg: cfg, info: info, pool: cfg.pool()}
	start := State{Progress: dart.StartProgress(), Pool: dart.NewPool(r.pool)}
	return game.NewMachine[State](info, r, start), nil
}

type State struct {
	dart.Progress
	Pool       dart.Pool
	Index      int
	HitInRound bool
	Burnout    bool
	Halvings   int
}

type rules struct {
	cfg  Config
	info game.Info
	pool dart.PoolRule
}

func (r *rules) Reduce(s State, ev dart.Event) State {
	if s.Finished() {
		return s
	}
	switch ev.Kind {
	case dart.EvThrow:
		if s.Darts.Full() {
			return s
		}
		s = r.throw(s, ev.Throw)
	case dart.EvNextRound:
		for s.Phase == dart.Throwing && !s.Darts.Full() {
			s = r.throw(s, dart.Miss())
		}
		if !s.Finished() {
			s.Phase = dart.RoundFinalizing
		}
	}
	if s.Phase == dart.RoundFinalizing {
		s = r.finalize(s)
	}
	return s
}

func (r *rules) throw(s State, t dart.Throw) State {
	first := s.Darts.Empty()
	tg := r.cfg.Targets[min(s.Index, len(r.cfg.Targets)-1)]
	if tg.Hits(t.Mult) {
		pts := tg.Score(t.Mult)
		s.Darts.Push(dart.Outcome{Value: tg.Value(), Mult: t.Mult, Points: pts, Hit: true, Target: tg.Value()})
		s.Tally.Hit(t.Mult, first)
		s.Points += pts
		s.HitInRound = true
		s.Pool.Regen(r.pool)
		return s
	}

	s.Darts.Push(dart.Outcome{Mult: t.Mult, Target: tg.Value()})
	s.Tally.Miss()
	switch s.Pool.Absorb(r.pool) {
	case dart.DrainBurnout:
		if !s.Burnout {
			s.Burnout = true
			s = halve(s)
			n := s.Darts.Remaining()
			for range n {
				s.Darts.Push(dart.FillerMiss(0))
			}
			s.Tally.Fill(n)
			s.Phase = dart.RoundFinalizing
		}
	case dart.DrainLife:
		s = halve(s)
	case dart.DrainLastLife:
		s = halve(s)
		if !r.info.Training {
			s.Finish()
		}
	}
	return s
}

// halve 分數減半（向下取整）。
func halve(s State) State {
	s.Points /= 2
	s.Halvings++
	return s
}

func (r *rules) finalize(s State) State {
	if s.HitInRound {
		s.Index++
	}
	if s.Round >= r.cfg.Rounds {
		s.Finish()
	} else {
		s.Round++
		if s.Burnout {
			s.Round++
		}
	}
	s.HitInRound = false
	s.Burnout = false
	s.Darts.Reset()

	if s.Index >= len(r.cfg.Targets) || s.Round > r.cfg.Rounds {
		s.Round = min(s.Round, r.cfg.Rounds)
		s.Finish()
	}
	if !s.Finished() {
		s.Phase = dart.Throwing
	}
	return s
}
