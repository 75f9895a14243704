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

package bot

import (
	"testing"

	"github.com/zintix-labs/dartlab/games"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

func TestWeightsSumToOne(t *testing.T) {
	for aim := 0; aim < numAims; aim++ {
		for _, skill := range []float64{0, 0.25, 0.5, 1} {
			sum := 0
			for _, w := range Weights(aim, skill) {
				if w < 0 {
					t.Fatalf("negative weight aim=%d skill=%v", aim, skill)
				}
				sum += w
			}
			if sum < 9995 || sum > 10005 {
				t.Fatalf("aim=%d skill=%v sums to %d", aim, skill, sum)
			}
		}
	}
	if Weights(aimBull, 1)[clsTriple] != 0 || Weights(aimDouble, 1)[clsTriple] != 0 {
		t.Fatalf("double and bull aims never land in a triple")
	}
}

func TestCheckoutRoutes(t *testing.T) {
	cases := []struct {
		score  int
		single bool
		want   Aim
	}{
		{40, false, Aim{20, dart.MultDouble}},
		{50, false, Aim{dart.Bull, dart.MultDouble}},
		{37, false, Aim{1, dart.MultSingle}},
		{57, false, Aim{17, dart.MultSingle}},
		{61, false, Aim{19, dart.MultTriple}},
		{501, false, Aim{20, dart.MultTriple}},
		{17, true, Aim{17, dart.MultSingle}},
		{25, true, Aim{dart.Bull, dart.MultSingle}},
		{45, true, Aim{15, dart.MultTriple}},
		{31, true, Aim{11, dart.MultSingle}},
	}
	for _, c := range cases {
		if got := Checkout(c.score, c.single); got != c.want {
			t.Fatalf("Checkout(%d,%v) = %+v, want %+v", c.score, c.single, got, c.want)
		}
	}
}

func TestFromLabel(t *testing.T) {
	cases := map[string]Aim{
		"D18":          {18, dart.MultDouble},
		"T15":          {15, dart.MultTriple},
		"BULL":         {dart.Bull, dart.MultSingle},
		"Bullseye":     {dart.Bull, dart.MultSingle},
		"Double (Any)": {20, dart.MultDouble},
		"7":            {7, dart.MultSingle},
		"nonsense":     {20, dart.MultTriple},
	}
	for label, want := range cases {
		if got := FromLabel(label); got != want {
			t.Fatalf("FromLabel(%q) = %+v, want %+v", label, got, want)
		}
	}
}

func TestChooseDoubleIn(t *testing.T) {
	info := game.Info{Input: dart.InputKeypad, Category: dart.CatScoring}
	v := dart.View{Score: 501, Extra: dart.Fields{dart.F("doubleIn", true), dart.F("opened", false)}}
	if got := Choose(info, v); got != (Aim{20, dart.MultDouble}) {
		t.Fatalf("closed double-in should aim D20, got %+v", got)
	}
	v.Extra = dart.Fields{dart.F("doubleIn", true), dart.F("opened", true)}
	if got := Choose(info, v); got != (Aim{20, dart.MultTriple}) {
		t.Fatalf("opened leg should aim T20, got %+v", got)
	}
}

func TestPlayFinishesEveryGame(t *testing.T) {
	for _, id := range games.Games.Keys() {
		eng, err := games.Games.Build(id, game.Params{Level: 1, Seed: 11})
		if err != nil {
			t.Fatalf("%s: build: %v", id, err)
		}
		if !New(0.8, 5).Play(eng, 0) {
			t.Fatalf("%s: bot did not finish", id)
		}
		if !eng.Finished() {
			t.Fatalf("%s: engine not finished", id)
		}
	}
}

func TestPlayDeterministic(t *testing.T) {
	play := func() dart.FinalStats {
		eng, err := games.Games.Build("x01", game.Params{Level: 1, Seed: 3})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		New(0.6, 99).Play(eng, 0)
		return eng.FinalStats()
	}
	a, b := play(), play()
	if a.XP != b.XP || a.SR != b.SR || a.Won != b.Won {
		t.Fatalf("same seeds diverged: %+v vs %+v", a, b)
	}
}

func TestPlayGivesUp(t *testing.T) {
	eng, err := games.Games.Build("x01", game.Params{Level: 1, Seed: 3})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if New(0, 1).Play(eng, 2) {
		t.Fatalf("501 cannot be finished in two rounds")
	}
}
