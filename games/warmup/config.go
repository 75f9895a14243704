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

// Package warmup 熱身：每輪三個槽位目標（18～20），打中對應槽位得倍率分，其他一律扣分。
package warmup

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/core"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "numbers-warmup"

const (
	trainingRounds = 9
	trainingMalus  = 2
	trainingXPBase = 300
)

// Order 槽位目標的排列方式。
type Order string

const (
	Desc   Order = "desc"
	Asc    Order = "asc"
	Random Order = "random"
)

var (
	descSlots = [dart.DartsPerRound]int{20, 19, 18}
	ascSlots  = [dart.DartsPerRound]int{18, 19, 20}
	slotPool  = []int{20, 19, 18}
)

func parseOrder(s string, def Order) Order {
	switch o := Order(s); o {
	case Desc, Asc, Random:
		return o
	default:
		return def
	}
}

type Config struct {
	Rounds    int   `yaml:"rounds"`
	Mode      Order `yaml:"mode"`
	MinPoints int   `yaml:"min_points"`
	Malus     int   `yaml:"malus"`
	XPBase    int   `yaml:"xp_base"`
}

func (c *Config) Valid() error {
	if c.Rounds < 1 {
		return errs.Fatalf("numbers-warmup: invalid rounds %d", c.Rounds)
	}
	if parseOrder(string(c.Mode), "") == "" {
		return errs.Fatalf("numbers-warmup: unknown mode %q", c.Mode)
	}
	if c.Malus <= 0 {
		c.Malus = trainingMalus
	}
	return nil
}

var table = setting.MustLoad[Config](tables.FS, "numbers-warmup.yaml")

func Table() *setting.Table[Config] { return table }

// LevelConfig 表中沒有的等級以公式推出。
func LevelConfig(level int) Config {
	if c, ok := table.Levels[level]; ok {
		return c
	}
	mode := Desc
	if level > 10 {
		mode = Random
	}
	return Config{
		Rounds:    6 + level/2,
		Mode:      mode,
		MinPoints: 20 + level*15,
		Malus:     1 + level/5,
		XPBase:    300 + level*15,
	}
}

// trainingConfig 缺少的設定直接用引擎預設（9 輪、隨機），不套用表單第一個選項。
func trainingConfig(s dart.Settings) Config {
	return Config{
		Rounds: s.PositiveInt("rounds", trainingRounds),
		Mode:   parseOrder(s.String("mode", ""), Random),
		Malus:  trainingMalus,
		XPBase: trainingXPBase,
	}
}

// drawSlots 每輪三個槽位，隨機模式在建立時一次抽完。
func drawSlots(cfg Config, seed int64) [][dart.DartsPerRound]int {
	out := make([][dart.DartsPerRound]int, cfg.Rounds)
	var c *core.Core
	if cfg.Mode == Random {
		c = core.NewWithSeed(seed)
	}
	for i := range out {
		switch cfg.Mode {
		case Asc:
			out[i] = ascSlots
		case Random:
			for j := range out[i] {
				out[i][j] = c.Pick(slotPool)
			}
		default:
			out[i] = descSlots
		}
	}
	return out
}

func Build(p game.Params) (game.Engine, error) {
	info := table.Info(p)
	var cfg Config
	if p.Training {
		cfg = trainingConfig(p.Settings)
	} else {
		cfg = LevelConfig(info.Level)
	}
	if err := cfg.Valid(); err != nil {
		return nil, err
	}
	r := newRules(cfg, info, drawSlots(cfg, p.Seed))
	return game.NewMachine[State](info, r, r.initial()), nil
}
