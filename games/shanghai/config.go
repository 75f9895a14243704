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

// Package shanghai 每輪一個目標，不論命中與否都往下一個目標前進。
package shanghai

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "shanghai"

const (
	malusBurnout = 10
	malusEmpty   = 25
	poolCap      = 3
)

type Config struct {
	Rounds      int           `yaml:"rounds"`
	Targets     []dart.Target `yaml:"targets"`
	StartEnergy float64       `yaml:"start_energy"`
	StartLives  float64       `yaml:"start_lives"`
	EnergyCost  float64       `yaml:"energy_cost"`
	EnergyRegen float64       `yaml:"energy_regen"`
	LifeCost    float64       `yaml:"life_cost"`
	LifeRegen   float64       `yaml:"life_regen"`
	MinPoints   int           `yaml:"min_points"`
	ShanghaiOut bool          `yaml:"shanghai_out"`
}

func (c *Config) Valid() error {
	if len(c.Targets) == 0 {
		return errs.NewFatal("shanghai: empty targets")
	}
	if c.Rounds < 1 {
		return errs.Fatalf("shanghai: invalid rounds %d", c.Rounds)
	}
	if c.StartEnergy < 0 || c.StartEnergy > poolCap || c.StartLives < 0 || c.StartLives > poolCap {
		return errs.NewFatal("shanghai: start budgets must be within [0,3]")
	}
	if c.EnergyCost < 0 || c.LifeCost < 0 || c.EnergyRegen < 0 || c.LifeRegen < 0 {
		return errs.NewFatal("shanghai: negative cost or regen")
	}
	return nil
}

// pool cost 為 0 時 Gauge 以 1 計。
func (c Config) pool() dart.PoolRule {
	return dart.PoolRule{
		Energy: dart.Gauge{Start: c.StartEnergy, Cap: poolCap, Regen: c.EnergyRegen, Cost: c.EnergyCost},
		Lives:  dart.Gauge{Start: c.StartLives, Cap: poolCap, Regen: c.LifeRegen, Cost: c.LifeCost},
	}
}

// MaxPoints 每個目標三鏢全中三倍的理論最高分（Bull 以 75 計）。
func (c Config) MaxPoints() int {
	total := 0
	for _, t := range c.Targets {
		if t.Value() == dart.Bull {
			total += 75
			continue
		}
		total += t.Value() * 9
	}
	return total
}

var table = setting.MustLoad[Config](tables.FS, "shanghai.yaml")

func Table() *setting.Table[Config] { return table }

func trainingConfig(s dart.Settings) Config {
	targets := dart.Span(15, 20)
	if s.String("combo", "15-B") == "12-B" {
		targets = append(dart.Span(12, 20), dart.Num(dart.Bull))
	}
	return Config{
		Rounds:      99,
		Targets:     targets,
		StartEnergy: 3,
		StartLives:  3,
		EnergyRegen: 1,
		MinPoints:   0,
		ShanghaiOut: s.Bool("shanghaiOut", false),
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
	r := &rules{cfg: cfg, info: info, pool: cfg.pool(), maxPoints: cfg.MaxPoints()}
	start := State{Progress: dart.StartProgress(), Pool: dart.NewPool(r.pool)}
	return game.NewMachine[State](info, r, start), nil
}
