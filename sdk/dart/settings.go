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
	"math"
	"strconv"
	"strings"
)

// Settings 練習模式的自訂設定（由前端表單產生）。
//
// 值可能是 string / float64 / int / bool（JSON 或 query 解碼的結果），
// 讀取一律寬鬆：缺鍵或型別不對就回傳預設值，不回錯。
type Settings map[string]any

// Has 是否有此鍵。
func (s Settings) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s[key]
	return ok
}

// WithDefaults 以 def 補上缺少的鍵，回傳新的 Settings（不修改 s）。
func (s Settings) WithDefaults(def Settings) Settings {
	out := make(Settings, len(s)+len(def))
	for k, v := range def {
		out[k] = v
	}
	for k, v := range s {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

// Int 讀整數；"3"、3、3.0 都接受。
func (s Settings) Int(key string, def int) int {
	if s == nil {
		return def
	}
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// IntIn 讀整數並夾在 [lo,hi]。
func (s Settings) IntIn(key string, def, lo, hi int) int {
	return min(hi, max(lo, s.Int(key, def)))
}

// PositiveInt 讀整數，<= 0 視為缺值。
func (s Settings) PositiveInt(key string, def int) int {
	if n := s.Int(key, def); n > 0 {
		return n
	}
	return def
}

// Bool 讀布林；"true"/"1"/"on" 皆視為 true。
func (s Settings) Bool(key string, def bool) bool {
	if s == nil {
		return def
	}
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "on", "yes":
			return true
		case "false", "0", "off", "no":
			return false
		}
		return def
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return def
	}
}

// String 讀字串，空字串視為缺值。
func (s Settings) String(key string, def string) string {
	if s == nil {
		return def
	}
	switch v := s[key].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return def
	}
}

// OptionType 練習設定欄位型別。
type OptionType string

const (
	OptSelect OptionType = "select"
	OptToggle OptionType = "toggle"
	OptNumber OptionType = "number"
)

// Choice select 的選項。
type Choice struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// Option 練習設定欄位描述。
type Option struct {
	ID      string     `yaml:"id"                json:"id"`
	Label   string     `yaml:"label"             json:"label"`
	Type    OptionType `yaml:"type"              json:"type"`
	Values  []Choice   `yaml:"values,omitempty"  json:"values,omitempty"`
	Default any        `yaml:"default,omitempty" json:"default,omitempty"`
	Min     *int       `yaml:"min,omitempty"     json:"min,omitempty"`
	Max     *int       `yaml:"max,omitempty"     json:"max,omitempty"`
}

// TrainingConfig 給前端建設定表單用的宣告式描述。
type TrainingConfig struct {
	GameID  string   `yaml:"game_id" json:"gameId"`
	Title   string   `yaml:"title"   json:"title"`
	Options []Option `yaml:"options" json:"options"`
}

// Defaults 以描述中的預設值（select 取第一個選項）組出 Settings。
func (tc TrainingConfig) Defaults() Settings {
	s := Settings{}
	for _, o := range tc.Options {
		switch {
		case o.Default != nil:
			s[o.ID] = o.Default
		case o.Type == OptSelect && len(o.Values) > 0:
			s[o.ID] = o.Values[0].Value
		}
	}
	return s
}
