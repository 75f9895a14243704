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

// History 有上限的快照堆疊，滿了就丟棄最舊的。
type History[S any] struct {
	items []S
	limit int
}

// NewHistory limit <= 0 時視為 1。
func NewHistory[S any](limit int) *History[S] {
	limit = max(1, limit)
	return &History[S]{items: make([]S, 0, min(limit, 64)), limit: limit}
}

// Push 推入一個快照。
func (h *History[S]) Push(s S) {
	if len(h.items) == h.limit {
		var zero S
		copy(h.items, h.items[1:])
		h.items[len(h.items)-1] = zero
		h.items = h.items[:len(h.items)-1]
	}
	h.items = append(h.items, s)
}

// Pop 取出最新的快照。
func (h *History[S]) Pop() (S, bool) {
	var zero S
	n := len(h.items)
	if n == 0 {
		return zero, false
	}
	s := h.items[n-1]
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	return s, true
}

// Len 目前保存的快照數。
func (h *History[S]) Len() int { return len(h.items) }
