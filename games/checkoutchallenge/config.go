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

// Package checkoutchallenge 每次抽一個隨機數字，在限定回合內倒數清零。
package checkoutchallenge

import (
	"strconv"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/core"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "checkoutchallenge"

const (
	checkReward     = 10
	defaultSwitchAt = 100
	maxCheckout     = 170
)

type Config struct {
	Min          int            `yaml:"min"`
	Max          int            `yaml:"max"`
	Attempts     int            `yaml:"attempts"`
	Check        dart.CheckMode `yaml:"check"`
	SwitchTarget int            `yaml:"switch_target"`
	MinPoints    int            `yaml:"min_points"`
	Malus        int            `yaml:"malus"`
	Rounds       int            `yaml:"rounds_per_target"`
}

func (c *Config) Valid() error {
	if c.Min < 2 || c.Max < c.Min || c.Max > maxCheckout {
		return errs.Fatalf("checkoutchallenge: invalid range [%d,%d]", c.Min, c.Max)
	}
	if c.Attempts < 1 {
		return errs.Fatalf("checkoutchallenge: invalid attempts %d", c.Attempts)
	}
	if !c.Check.Valid() {
		return errs.Fatalf("checkoutchallenge: unknown check mode %q", c.Check)
	}
	if c.SwitchTarget <= 0 {
		c.SwitchTarget = defaultSwitchAt
	}
	if c.Rounds < 1 {
		c.Rounds = 3
	}
	if c.Malus < 0 {
		c.Malus = 0
	}
	return nil
}

var table = setting.MustLoad[Config](tables.FS, "checkoutchallenge.yaml")

func Table() *setting.Table[Config] { return table }

// LevelConfig 表中沒有的等級以公式推出：區間寬 40、上限 min(170, 40+6L)。
func LevelConfig(level int) Config {
	if c, ok := table.Levels[level]; ok {
		return c
	}
	hi := min(maxCheckout, 40+level*6)
	check := dart.SingleOut
	switch {
	case level > 5:
		check = dart.DoubleOut
	case level > 3:
		check = dart.Hybrid
	}
	return Config{
		Min:          max(2, hi-40),
		Max:          hi,
		Attempts:     10,
		Check:        check,
		SwitchTarget: 80,
		MinPoints:    30 + level*2,
		Malus:        5 + level/2,
		Rounds:       3,
	}
}

// ranges 練習模式的區間選項。
var ranges = map[string][2]int{
	"2-40":    {2, 40},
	"41-80":   {41, 80},
	"81-120":  {81, 120},
	"121-170": {121, 170},
}

func trainingConfig(s dart.Settings) Config {
	s = table.TrainingSettings(s)
	rg, ok := ranges[s.String("difficulty", "")]
	if !ok {
		rg = ranges["41-80"]
	}
	return Config{
		Min:          rg[0],
		Max:          rg[1],
		Attempts:     s.PositiveInt("attempts", 10),
		Check:        dart.ParseCheckMode(s.String("checkMode", ""), dart.DoubleOut),
		SwitchTarget: defaultSwitchAt,
		Rounds:       s.PositiveInt("roundsPerTarget", 3),
	}
}

// drawTargets 建立時就把每一次嘗試的數字抽好，Reduce 不需要碰亂數。
func drawTargets(cfg Config, seed int64) []int {
	c := core.NewWithSeed(seed)
	out := make([]int, cfg.Attempts)
	for i := range out {
		out[i] = c.Between(cfg.Min, cfg.Max)
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
	r := newRules(cfg, info, drawTargets(cfg, p.Seed))
	return game.NewMachine[State](info, r, r.initial()), nil
}

// Label 目前區間，例如 "41-80"。
func (c Config) Label() string {
	return strconv.Itoa(c.Min) + "-" + strconv.Itoa(c.Max)
}
