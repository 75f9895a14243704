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

// Package sectionhit 每個區塊需命中 required_hits 次才能前進，命中得分等於倍率。
package sectionhit

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/core"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "sectionhit"

const (
	malusLife   = 10
	malusNoLife = 20

	energyCap         = 10
	energyCapTraining = 20

	// trainingTargets 練習模式一次抽出的隨機區塊數
	trainingTargets = 100
)

// randomPool 練習模式抽區塊的範圍。
var randomPool = []int{20, 19, 18, 17, 16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 25}

type Config struct {
	Targets      []dart.Target `yaml:"targets"`
	Rounds       int           `yaml:"rounds"`
	StartLives   float64       `yaml:"start_lives"`
	StartEnergy  float64       `yaml:"start_energy"`
	MinPoints    int           `yaml:"min_points"`
	RequiredHits int           `yaml:"required_hits"`
}

func (c *Config) Valid() error {
	if len(c.Targets) == 0 {
		return errs.NewFatal("sectionhit: empty targets")
	}
	if c.Rounds < 1 {
		return errs.Fatalf("sectionhit: invalid rounds %d", c.Rounds)
	}
	if c.StartLives < 0 || c.StartEnergy < 0 {
		return errs.NewFatal("sectionhit: negative start budget")
	}
	if c.RequiredHits < 1 {
		c.RequiredHits = 3
	}
	return nil
}

var table = setting.MustLoad[Config](tables.FS, "sectionhit.yaml")

func Table() *setting.Table[Config] { return table }

// trainingConfig 練習模式的目標是 100 個隨機區塊，由 seed 決定。
func trainingConfig(s dart.Settings, seed int64) Config {
	c := core.NewWithSeed(seed)
	return Config{
		Targets:      dart.Nums(c.PickN(randomPool, trainingTargets)...),
		Rounds:       s.IntIn("maxRounds", 99, 1, 99),
		StartLives:   float64(s.IntIn("startHerz", 5, 0, 10)),
		StartEnergy:  float64(s.IntIn("startBlitz", 10, 0, energyCapTraining)),
		MinPoints:    0,
		RequiredHits: s.IntIn("requiredHits", 3, 1, 5),
	}
}

func Build(p game.Params) (game.Engine, error) {
	info := table.Info(p)
	var cfg Config
	if p.Training {
		cfg = trainingConfig(p.Settings, p.Seed)
	} else {
		cfg, _ = table.Lookup(info.Level)
	}
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	r := &rules{cfg: cfg, info: info, pool: poolRule(cfg, p.Training)}
	start := State{Progress: dart.StartProgress(), Pool: dart.NewPool(r.pool)}
	return game.NewMachine[State](info, r, start), nil
}

// poolRule 命中一律回復 1 點能量（即使起始為 0），上限 10（練習 20）；生命不回復。
func poolRule(c Config, training bool) dart.PoolRule {
	capE := float64(energyCap)
	if training {
		capE = energyCapTraining
	}
	return dart.PoolRule{
		Energy:        dart.Gauge{Start: c.StartEnergy, Cap: capE, Regen: 1},
		Lives:         dart.Gauge{Start: c.StartLives},
		RegenInactive: true,
	}
}
