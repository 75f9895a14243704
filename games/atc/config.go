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

// Package atc Around The Clock：依序清掉目標，每個目標需命中 hits_per_target 次。
//
// 落空先扣能量（bolts），能量歸零觸發一次燃盡（本輪補滿落空並多跳一輪）；
// 能量用完才扣生命並加罰分。
package atc

import (
	"fmt"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "atc"

// 罰分
const (
	malusLife      = 25
	malusNoLife    = 50
	malusNoSystems = 10
	poolCap        = 3
)

// Config 單一等級的規則。
type Config struct {
	Targets       []dart.Target `yaml:"targets"`
	Rounds        int           `yaml:"rounds"`
	StartEnergy   float64       `yaml:"start_energy"`
	RegenEnergy   float64       `yaml:"regen_energy"`
	StartLives    float64       `yaml:"start_lives"`
	RegenLives    float64       `yaml:"regen_lives"`
	MinPoints     int           `yaml:"min_points"`
	HitsPerTarget int           `yaml:"hits_per_target"`
}

// Valid 基本檢查；hits_per_target 缺值視為 1。
func (c *Config) Valid() error {
	if len(c.Targets) == 0 {
		return errs.NewFatal("atc: empty targets")
	}
	if c.Rounds < 1 {
		return errs.NewFatal(fmt.Sprintf("atc: invalid rounds %d", c.Rounds))
	}
	if c.StartEnergy < 0 || c.StartEnergy > poolCap || c.StartLives < 0 || c.StartLives > poolCap {
		return errs.NewFatal("atc: start budgets must be within [0,3]")
	}
	if c.HitsPerTarget < 1 {
		c.HitsPerTarget = 1
	}
	return nil
}

// pool 啟用中的系統 regen 為 0 時視為 1；停用的系統不回復。
func (c Config) pool() dart.PoolRule {
	return dart.PoolRule{
		Energy: dart.Gauge{Start: c.StartEnergy, Cap: poolCap, Regen: regainOrOne(c.RegenEnergy)},
		Lives:  dart.Gauge{Start: c.StartLives, Cap: poolCap, Regen: regainOrOne(c.RegenLives)},
	}
}

func regainOrOne(v float64) float64 {
	if v > 0 {
		return v
	}
	return 1
}

var table = setting.MustLoad[Config](tables.FS, "atc.yaml")

// Table 內嵌的關卡表。
func Table() *setting.Table[Config] { return table }

// trainingConfig 練習模式：範圍 10-20 或 1-20、可加 Bull、每個目標 1~3 次。
func trainingConfig(s dart.Settings) Config {
	start := 1
	if s.String("range", "1-20") == "10-20" {
		start = 10
	}
	targets := dart.Span(start, 20)
	if s.Bool("bull", false) {
		targets = append(targets, dart.Num(dart.Bull))
	}
	return Config{
		Targets:       targets,
		Rounds:        999,
		StartEnergy:   3,
		RegenEnergy:   1,
		StartLives:    3,
		RegenLives:    1,
		MinPoints:     0,
		HitsPerTarget: s.PositiveInt("hits", 1),
	}
}

// Build 建立一場 ATC。
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
	r := newRules(cfg, info)
	return game.NewMachine[State](info, r, r.initial()), nil
}
