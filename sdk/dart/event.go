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

// EventKind 會改變 State 的事件種類。
type EventKind uint8

const (
	EvThrow EventKind = iota
	EvNextRound
)

func (k EventKind) String() string {
	switch k {
	case EvThrow:
		return "throw"
	case EvNextRound:
		return "next"
	default:
		return "unknown"
	}
}

// Event Reduce 的輸入。
type Event struct {
	Kind  EventKind
	Throw Throw
}

// ThrowEvent 一鏢。
func ThrowEvent(t Throw) Event { return Event{Kind: EvThrow, Throw: t} }

// NextRoundEvent 結束本輪。
func NextRoundEvent() Event { return Event{Kind: EvNextRound} }
