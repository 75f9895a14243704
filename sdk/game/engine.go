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

package game

import "github.com/zintix-labs/dartlab/sdk/dart"

// DefaultHistoryLimit 每個 session 保留的快照上限，超過時丟棄最舊的。
const DefaultHistoryLimit = 512

// Engine 每種遊戲對外的統一生命週期合約。
//
// 所有方法同步執行、不回傳錯誤；不合法的操作（終局後投擲、第四鏢、空歷史 undo）
// 會被整筆拒絕並回傳 false，狀態不變。
// Engine 不保證併發安全，同一個 session 同時只能有一個呼叫者。
type Engine interface {
	Info() Info
	Throw(t dart.Throw) bool
	NextRound() bool
	Undo() bool
	Finished() bool
	FinalStats() dart.FinalStats
	View() dart.View
	Progress() dart.Progress
}

// Info 建立後不變的身分資訊。
type Info struct {
	GameID   string        `json:"game_id"`
	Level    int           `json:"level"`
	Training bool          `json:"training"`
	Input    dart.Input    `json:"input"`
	Category dart.Category `json:"category"`
	Seed     int64         `json:"seed"`
}

// State 引擎狀態的約束：以值嵌入 dart.Progress。
type State interface {
	Base() dart.Progress
}

// Rules 一種遊戲的純規則。
//
// Reduce 必須是純函數：同樣的 (state, event) 永遠得到同樣的新 state，
// 不得保留對輸入 state 的參照（State 內的 slice 必須視為唯讀）。
type Rules[S State] interface {
	Reduce(s S, ev dart.Event) S
	Final(s S) dart.FinalStats
	View(s S) dart.View
}

// Machine 以 Rules 驅動的通用 Engine 實作：負責拒絕不合法操作與維護快照歷史。
type Machine[S State] struct {
	info  Info
	rules Rules[S]
	state S
	hist  *History[S]
}

// NewMachine 以初始狀態建立 Machine。
func NewMachine[S State](info Info, rules Rules[S], init S) *Machine[S] {
	return &Machine[S]{
		info:  info,
		rules: rules,
		state: init,
		hist:  NewHistory[S](DefaultHistoryLimit),
	}
}

func (m *Machine[S]) Info() Info { return m.info }

// Throw 投一鏢。
func (m *Machine[S]) Throw(t dart.Throw) bool {
	b := m.state.Base()
	if b.Finished() || b.Darts.Full() {
		return false
	}
	m.apply(dart.ThrowEvent(m.normalize(t)))
	return true
}

// NextRound 結束本輪（不足三鏢以落空補滿）。
func (m *Machine[S]) NextRound() bool {
	if m.state.Base().Finished() {
		return false
	}
	m.apply(dart.NextRoundEvent())
	return true
}

// Undo 回到上一個事件之前的狀態。
func (m *Machine[S]) Undo() bool {
	prev, ok := m.hist.Pop()
	if !ok {
		return false
	}
	m.state = prev
	return true
}

func (m *Machine[S]) Finished() bool { return m.state.Base().Finished() }

func (m *Machine[S]) FinalStats() dart.FinalStats { return m.rules.Final(m.state) }

func (m *Machine[S]) View() dart.View { return m.rules.View(m.state) }

func (m *Machine[S]) Progress() dart.Progress { return m.state.Base() }

// State 目前狀態（值複製）。
func (m *Machine[S]) State() S { return m.state }

// HistoryLen 可 undo 的步數。
func (m *Machine[S]) HistoryLen() int { return m.hist.Len() }

func (m *Machine[S]) apply(ev dart.Event) {
	m.hist.Push(m.state)
	m.state = m.rules.Reduce(m.state, ev)
}

func (m *Machine[S]) normalize(t dart.Throw) dart.Throw {
	if m.info.Input == dart.InputKeypad {
		return t.Normalize()
	}
	return dart.Throw{Mult: dart.NormalizeMult(t.Mult)}
}
