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

package dart

// Input 輸入方式。
type Input string

const (
	// InputBoard 固定目標序列，只需回報倍率。
	InputBoard Input = "board"
	// InputKeypad 需要回報區塊與倍率。
	InputKeypad Input = "keypad"
)

// Category 技術分類別，對應玩家檔案上的 SR 欄位。
type Category string

const (
	CatBoardControl Category = "boardcontrol"
	CatFinishing    Category = "finishing"
	CatScoring      Category = "scoring"
	CatWarmup       Category = "warmup"
)

// View 呼叫端每次操作後重讀的顯示狀態。
type View struct {
	Phase     string    `json:"phase"`
	Finished  bool      `json:"finished"`
	Round     int       `json:"round"`
	MaxRounds int       `json:"max_rounds,omitempty"`
	Points    int       `json:"points"`
	Malus     int       `json:"malus"`
	Score     int       `json:"score,omitempty"`
	Pool      *Pool     `json:"pool,omitempty"`
	Target    string    `json:"target,omitempty"`
	Targets   []string  `json:"targets"`
	Progress  string    `json:"progress,omitempty"`
	Darts     []Outcome `json:"darts"`
	Extra     Fields    `json:"extra,omitempty"`
}

// BaseView 由共用欄位填好 View。
func BaseView(p Progress) View {
	return View{
		Phase:    p.Phase.String(),
		Finished: p.Finished(),
		Round:    p.Round,
		Points:   p.Points,
		Malus:    p.Malus,
		Targets:  []string{},
		Darts:    p.Darts.Darts(),
	}
}
