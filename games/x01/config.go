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

// Package x01 301/501/701 倒數，可選 double in / double out，並記錄回合（visit）統計。
package x01

import (
	"slices"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"github.com/zintix-labs/dartlab/setting"
)

const GameID = "x01"

// Starts 可選的起始分數。
var Starts = []int{301, 501, 701}

type Config struct {
	Start     int  `yaml:"start"`
	DoubleOut bool `yaml:"double_out"`
	DoubleIn  bool `yaml:"double_in"`
}

func (c *Config) Valid() error {
	if !slices.Contains(Starts, c.Start) {
		return errs.Fatalf("x01: unsupported start score %d", c.Start)
	}
	return nil
}

func (c Config) mode() dart.CheckMode {
	if c.DoubleOut {
		return dart.DoubleOut
	}
	return dart.SingleOut
}

var table = setting.MustLoad[Config](tables.FS, "x01.yaml")

func Table() *setting.Table[Config] { return table }

// trainingConfig 不認得的起始分數回到 501。
func trainingConfig(s dart.Settings) Config {
	s = table.TrainingSettings(s)
	start := s.Int("score", 501)
	if !slices.Contains(Starts, start) {
		start = 501
	}
	return Config{
		Start:     start,
		DoubleOut: s.Bool("doubleOut", true),
		DoubleIn:  s.Bool("doubleIn", false),
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
	r := &rules{cfg: cfg, info: info}
	return game.NewMachine[State](info, r, r.initial()), nil
}
