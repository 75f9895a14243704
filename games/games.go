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

// Package games 把內建的八款遊戲註冊到同一個 Registry。
package games

import (
	"log"

	"github.com/zintix-labs/dartlab/games/atc"
	"github.com/zintix-labs/dartlab/games/bermuda"
	"github.com/zintix-labs/dartlab/games/checkoutchallenge"
	"github.com/zintix-labs/dartlab/games/game121"
	"github.com/zintix-labs/dartlab/games/sectionhit"
	"github.com/zintix-labs/dartlab/games/shanghai"
	"github.com/zintix-labs/dartlab/games/tables"
	"github.com/zintix-labs/dartlab/games/warmup"
	"github.com/zintix-labs/dartlab/games/x01"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// Games 內建遊戲的 builders。
var Games = game.NewRegistry()

// Tables 內建遊戲的關卡表。
var Tables = tables.FS

func init() {
	builders := []struct {
		id string
		b  game.Builder
	}{
		{atc.GameID, atc.Build},
		{sectionhit.GameID, sectionhit.Build},
		{shanghai.GameID, shanghai.Build},
		{bermuda.GameID, bermuda.Build},
		{game121.GameID, game121.Build},
		{checkoutchallenge.GameID, checkoutchallenge.Build},
		{warmup.GameID, warmup.Build},
		{x01.GameID, x01.Build},
	}
	for _, g := range builders {
		if err := Games.Register(g.id, g.b); err != nil {
			log.Fatalf("%s register failed: %v", g.id, err)
		}
	}
}
