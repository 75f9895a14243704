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

// Package game121 從起始數字倒數到 0（Checkout），每個數字有固定回合數；
// 成功後數字往上加，失敗則罰分並依設定回到起始數字。
package game121

import (
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "game121"

const (
	checkReward     = 10
	defaultSwitchAt = 100
	defaultMalus    = 5
)

type Config struct {
	Start            int            `yaml:"start"`
	Rounds           int            `yaml:"rounds"`
	Check            dart.CheckMode `yaml:"check"`
	SwitchTarget     int            `yaml:"switch_target"`
	TotalTargets     int            `yaml:"total_targets"`
	MinPoints        int            `yaml:"min_points"`
	ResetToStart     *bool          `yaml:"reset_to_start"`
	Malus            int            `yaml:"malus"`
	MinTargetToReach int            `yaml:"min_target_to_reach"`
}

// Valid 補預設值：switch 100、malus 5、reset_to_start true。
func (c *Config) Valid() error {
	if c.Start < 2 {
		return errs.Fatalf("game121: invalid start %d", c.Start)
	}
	if c.Rounds < 1 || c.TotalTargets < 1 {
		return errs.Fatalf("game121: invalid rounds %d / total_targets %d", c.Rounds, c.TotalTargets)
	}
	if !c.Check.Valid() {
		return errs.Fatalf("game121: unknown check mode %q", c.Check)
	}
	if c.SwitchTarget <= 0 {
		c.SwitchTarget = defaultSwitchAt
	}
	if c.Malus <= 0 {
		c.Malus = defaultMalus
	}
	if c.ResetToStart == nil {
		on := true
		c.ResetToStart = &on
	}
	return nil
}

func (c Config) reset() bool { return c.ResetToStart == nil || *c.ResetToStart }

var table = setting.MustLoad[Config](tables.FS, "game121.yaml")

func Table() *setting.Table[Config] { return table }

// LevelConfig 表中有定義就直接使用；否則 10 以下以等級 1 為底調整起始數與目標數，
// 10 以上以等級 10 為底縮減每個數字的回合數。
func LevelConfig(level int) Config {
	if c, ok := table.Levels[level]; ok {
		return c
	}
	if level < 10 {
		c := table.Levels[1]
		c.Start = 61 + level*5
		c.TotalTargets = 5 + level/5
		return c
	}
	c := table.Levels[10]
	c.Rounds = max(2, 10-(level-10))
	return c
}

func trainingConfig(s dart.Settings) Config {
	s = table.TrainingSettings(s)
	reset := s.Bool("resetToStart", true)
	return Config{
		Start:        s.PositiveInt("startTarget", 61),
		Rounds:       s.PositiveInt("roundsPerTarget", 2),
		Check:        dart.ParseCheckMode(s.String("checkMode", ""), dart.SingleOut),
		SwitchTarget: s.PositiveInt("switchTarget", defaultSwitchAt),
		TotalTargets: s.PositiveInt("totalTargets", 3),
		MinPoints:    0,
		ResetToStart: &reset,
	}
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
	r := &rules{cfg: cfg, info: info}
	start := State{
		Progress: dart.StartProgress(),
		Score:    cfg.Start,
		Target:   cfg.Start,
	}
	return game.NewMachine[State](info, r, start), nil
}
