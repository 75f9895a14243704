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

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// SRMax 技術分上限。
const SRMax = 180

// TrainingXPScale 練習模式的 XP 倍率。
const TrainingXPScale = 0.1

// FinalStats 一場比賽的結算，交給持久層原樣保存。
type FinalStats struct {
	XP    int    `json:"xp"`
	SR    int    `json:"sr"`
	Won   bool   `json:"won"`
	Stats Fields `json:"stats"`
}

// Mode 人類可讀的模式標籤。
func (f FinalStats) Mode() string {
	s, _ := f.Stats.Get("mode")
	if str, ok := s.(string); ok {
		return str
	}
	return ""
}

// Field 保序的統計欄位。
type Field struct {
	Key   string
	Value any
}

// Fields 保序欄位列表，JSON 輸出為物件且維持插入順序。
type Fields []Field

// F 建立欄位。
func F(key string, v any) Field { return Field{Key: key, Value: v} }

// With 追加欄位，同名時覆寫原值（保留原位置）。
func (fs Fields) With(more ...Field) Fields {
	out := make(Fields, len(fs), len(fs)+len(more))
	copy(out, fs)
	for _, m := range more {
		replaced := false
		for i := range out {
			if out[i].Key == m.Key {
				out[i].Value = m.Value
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, m)
		}
	}
	return out
}

// Get 依 key 取值。
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Int 依 key 取整數值，非數值回傳 0。
func (fs Fields) Int(key string) int {
	v, ok := fs.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Map 轉成 map（失去順序）。
func (fs Fields) Map() map[string]any {
	m := make(map[string]any, len(fs))
	for _, f := range fs {
		m[f.Key] = f.Value
	}
	return m
}

func (fs Fields) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON 以 json.Decoder 逐 token 讀回，保留順序。
func (fs *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: expected object")
	}
	out := Fields{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				v = int(i)
			} else if f, err := n.Float64(); err == nil {
				v = f
			}
		}
		out = append(out, F(key, v))
	}
	*fs = out
	return nil
}

// TallyFields 共用統計欄位。
func TallyFields(t Tally) Fields {
	return Fields{
		F("totalDarts", t.TotalDarts),
		F("hits", t.Hits),
		F("misses", t.Misses),
		F("singles", t.Singles),
		F("doubles", t.Doubles),
		F("triples", t.Triples),
		F("maxStreak", t.MaxStreak),
		F("firstDartHits", t.FirstDartHits),
	}
}

// Percent "12.3%"
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// ClampSR floor 後夾在 [0,180]。
func ClampSR(raw float64) int {
	if math.IsNaN(raw) || raw <= 0 {
		return 0
	}
	return min(SRMax, int(math.Floor(raw)))
}

// ScaleXP 練習模式乘 0.1 後 floor。
func ScaleXP(raw float64, training bool) int {
	if training {
		raw *= TrainingXPScale
	}
	if raw <= 0 || math.IsNaN(raw) {
		return 0
	}
	return int(math.Floor(raw))
}

// Ratio a / b，b == 0 時回傳 0。
func Ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
