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

package levelsys

import "testing"

func TestLevelCurve(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{79, 1},
		{80, 1},
		{380, 1},
		{381, 2},
		{1000, 3},
		{1 << 30, MaxLevel},
	}
	for _, c := range cases {
		if got := Level(c.xp); got != c.want {
			t.Fatalf("Level(%d) = %d, want %d", c.xp, got, c.want)
		}
	}
}

func TestXPForLevel(t *testing.T) {
	if got := XPForLevel(1); got != 80 {
		t.Fatalf("level 1 needs %d, want 80", got)
	}
	if got := XPForLevel(2); got != 380 {
		t.Fatalf("level 2 needs %d, want 380", got)
	}
	if got := XPForLevel(0); got != 0 {
		t.Fatalf("level 0 needs %d", got)
	}
	prev := 0
	for l := 1; l <= MaxLevel; l++ {
		xp := XPForLevel(l)
		if xp <= prev {
			t.Fatalf("curve not increasing at %d", l)
		}
		prev = xp
	}
}

func TestProgressBounds(t *testing.T) {
	p := Progress(0)
	if p.Level != 1 || p.Percent != 2 || p.XPToNext != 380 {
		t.Fatalf("unexpected start progress: %+v", p)
	}
	p = Progress(230)
	if p.Percent != 50 {
		t.Fatalf("want 50%%, got %v", p.Percent)
	}
	p = Progress(XPForLevel(MaxLevel) + 10)
	if p.Level != MaxLevel || p.Percent != 100 || p.XPToNext != 0 {
		t.Fatalf("unexpected max progress: %+v", p)
	}
	for xp := 0; xp < 20000; xp += 37 {
		p := Progress(xp)
		if p.Percent < 2 || p.Percent > 100 {
			t.Fatalf("percent out of range at %d: %v", xp, p.Percent)
		}
	}
}
