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

package setting

import (
	"bytes"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
	"gopkg.in/yaml.v3"
)

// Header 每份關卡表共有的描述欄位，catalog 只讀這一段。
type Header struct {
	GameID   string              `yaml:"game_id"  json:"game_id"`
	Title    string              `yaml:"title"    json:"title"`
	Category dart.Category       `yaml:"category" json:"category"`
	Input    dart.Input          `yaml:"input"    json:"input"`
	Mapper   Mapper              `yaml:"mapper"   json:"mapper"`
	Training dart.TrainingConfig `yaml:"training" json:"training"`
}

func (h *Header) valid() error {
	h.GameID = strings.TrimSpace(h.GameID)
	if h.GameID == "" {
		return errs.NewFatal("game_id required")
	}
	if strings.TrimSpace(h.Title) == "" {
		return errs.NewFatal(fmt.Sprintf("%s: title required", h.GameID))
	}
	switch h.Category {
	case dart.CatBoardControl, dart.CatFinishing, dart.CatScoring, dart.CatWarmup:
	default:
		return errs.NewFatal(fmt.Sprintf("%s: unknown category %q", h.GameID, h.Category))
	}
	switch h.Input {
	case dart.InputBoard, dart.InputKeypad:
	default:
		return errs.NewFatal(fmt.Sprintf("%s: unknown input %q", h.GameID, h.Input))
	}
	if err := h.Mapper.valid(); err != nil {
		return errs.Wrap(err, h.GameID)
	}
	if h.Training.GameID == "" {
		h.Training.GameID = h.GameID
	}
	ids := make(map[string]struct{}, len(h.Training.Options))
	for _, o := range h.Training.Options {
		if o.ID == "" {
			return errs.NewFatal(fmt.Sprintf("%s: training option without id", h.GameID))
		}
		if _, dup := ids[o.ID]; dup {
			return errs.NewFatal(fmt.Sprintf("%s: duplicate training option %s", h.GameID, o.ID))
		}
		ids[o.ID] = struct{}{}
		switch o.Type {
		case dart.OptSelect:
			if len(o.Values) == 0 {
				return errs.NewFatal(fmt.Sprintf("%s: select option %s has no values", h.GameID, o.ID))
			}
		case dart.OptToggle, dart.OptNumber:
		default:
			return errs.NewFatal(fmt.Sprintf("%s: option %s has unknown type %q", h.GameID, o.ID, o.Type))
		}
	}
	return nil
}

// ClampLevel 把遊戲難度夾在 [1, mapper.max]。
func (h Header) ClampLevel(level int) int {
	return min(max(1, h.Mapper.Max), max(1, level))
}

// Info 建立 session 的身分資訊。
func (h Header) Info(p game.Params) game.Info {
	return game.Info{
		GameID:   h.GameID,
		Level:    h.ClampLevel(p.Level),
		Training: p.Training,
		Input:    h.Input,
		Category: h.Category,
		Seed:     p.Seed,
	}
}

// TrainingSettings 以練習描述的預設值補齊呼叫端的自訂設定。
func (h Header) TrainingSettings(s dart.Settings) dart.Settings {
	return s.WithDefaults(h.Training.Defaults())
}

// Validator 關卡設定可選擇實作的自我檢查。
type Validator interface {
	Valid() error
}

// Table 一款遊戲的關卡表：level → 規則設定 T。
//
// 表中不必列出每一級；Lookup 取「不超過要求等級的最高已定義等級」，
// 低於最低等級時取最低等級。
type Table[T any] struct {
	Header `yaml:",inline"`
	Levels map[int]T `yaml:"levels"`

	keys []int
}

// Decode 以嚴格模式解析 YAML（多寫或拼錯欄位就報錯），並執行基本檢查。
func Decode[T any](raw []byte) (*Table[T], error) {
	t := &Table[T]{}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(t); err != nil {
		return nil, errs.Wrap(err, "setting: decode level table failed")
	}
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load 由 fs.FS 讀取並解析一份關卡表。
func Load[T any](fsys fs.FS, name string) (*Table[T], error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.Wrap(err, "setting: read "+name)
	}
	t, err := Decode[T](raw)
	if err != nil {
		return nil, errs.Wrap(err, name)
	}
	return t, nil
}

// MustLoad 給套件層級變數使用；內嵌的設定檔壞掉屬於建置錯誤。
func MustLoad[T any](fsys fs.FS, name string) *Table[T] {
	t, err := Load[T](fsys, name)
	if err != nil {
		panic(err)
	}
	return t
}

// DecodeHeader 只解析描述欄位，各級設定保留為 yaml.Node 不解碼。
func DecodeHeader(raw []byte) (Header, []int, error) {
	t, err := Decode[yaml.Node](raw)
	if err != nil {
		return Header{}, nil, err
	}
	return t.Header, t.LevelKeys(), nil
}

func (t *Table[T]) init() error {
	if err := t.Header.valid(); err != nil {
		return err
	}
	if len(t.Levels) == 0 {
		return errs.NewFatal(fmt.Sprintf("%s: empty levels", t.GameID))
	}
	t.keys = make([]int, 0, len(t.Levels))
	for lv, cfg := range t.Levels {
		if lv < 1 {
			return errs.NewFatal(fmt.Sprintf("%s: invalid level %d", t.GameID, lv))
		}
		if v, ok := any(&cfg).(Validator); ok {
			if err := v.Valid(); err != nil {
				return errs.Wrap(err, fmt.Sprintf("%s level %d", t.GameID, lv))
			}
			t.Levels[lv] = cfg
		}
		t.keys = append(t.keys, lv)
	}
	slices.Sort(t.keys)
	return nil
}

// LevelKeys 已定義的等級（遞增）。
func (t *Table[T]) LevelKeys() []int {
	return slices.Clone(t.keys)
}

// MaxLevel 表中最高的已定義等級。
func (t *Table[T]) MaxLevel() int {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1]
}

// Has level 是否有明確定義。
func (t *Table[T]) Has(level int) bool {
	_, ok := t.Levels[level]
	return ok
}

// Lookup 回傳生效的設定與其實際等級。
func (t *Table[T]) Lookup(level int) (T, int) {
	if len(t.keys) == 0 {
		var zero T
		return zero, 0
	}
	at := t.keys[0]
	for _, k := range t.keys {
		if k > level {
			break
		}
		at = k
	}
	return t.Levels[at], at
}
