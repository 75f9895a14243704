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

// Package dartlab 提供飛鏢練習引擎的「組裝入口」與「運行入口」。
//
// Lab 把兩個地基組裝在一起，並提供建立 session 的入口：
//  1. Catalog：遊戲目錄，來自內嵌的關卡表（每款遊戲一份 YAML）。
//  2. Registry：遊戲規則註冊表，game id → Builder。
//
// 典型使用情境：
//   - 後端服務：由 Lab 建立 SessionRuntime，HTTP / websocket 呼叫端在其上投鏢。
//   - 模擬器：由 Lab 建立 Simulator，讓機器人大量對局以校準關卡表。
package dartlab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/dartlab/catalog"
	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/sdk/game"
)

// Tables 把一或多個關卡表來源打包成 New() 需要的參數。
//
// 可以用 go:embed 把關卡表編進 binary，也可以在本機開發時用 os.DirFS 讀目錄。
func Tables(src ...fs.FS) []fs.FS {
	return src
}

// Games 把一或多個規則註冊表打包成 New() 需要的參數。
// 重複的 game id 在 New() 直接失敗。
func Games(regs ...*game.Registry) []*game.Registry {
	return regs
}

// Lab 組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 組裝階段：建立 catalog、合併 registries、檢查每份關卡表都有對應的規則。
//   - 執行階段：Freeze 之後，依 game id 建立 session。
type Lab struct {
	cat *catalog.Catalog
	reg *game.Registry
	sum []catalog.Summary
}

// New 建立一個尚未註冊任何遊戲的 Lab。
func New(tables []fs.FS, games []*game.Registry) (*Lab, error) {
	if len(tables) == 0 {
		return nil, errs.NewFatal("level tables required")
	}
	if len(games) == 0 {
		return nil, errs.NewFatal("game registry required")
	}
	cata, err := catalog.New(tables...)
	if err != nil {
		return nil, err
	}
	reg, err := game.MergeRegistry(games...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata, reg: reg}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab。
func NewAuto(tables []fs.FS, games []*game.Registry) (*Lab, error) {
	lab, err := New(tables, games)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll 掃描所有關卡表，以表頭產生 catalog.Entry 並一次性註冊。
//
//  1. Fail-fast：任何一份表讀取、解析或找不到規則，立刻回傳 error。
//  2. 原子性：全部成功才呼叫一次 Register，不會留下註冊一半的目錄。
//  3. 依檔名排序處理（fs.WalkDir 保證字典序）。
func (l *Lab) RegisterAll() error {
	sources := l.cat.Cfg().Sources()
	if len(sources) == 0 {
		return errs.NewFatal("level tables required")
	}

	entries := make([]catalog.Entry, 0, 16)
	seenID := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("tables must be flat (no subdir): %q", path))
			}
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read table failed: %s", base))
			}
			ent, perr := catalog.EntryFromFile(base, raw)
			if perr != nil {
				return perr
			}
			if prev, ok := seenID[ent.GameID]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate game id: %s (table=%s and %s)", ent.GameID, prev, base))
			}
			if _, ok := l.cat.GetByID(ent.GameID); ok {
				return errs.NewFatal(fmt.Sprintf("game id already registered: %s (table=%s)", ent.GameID, base))
			}
			seenID[ent.GameID] = base
			if !l.reg.IsExist(ent.GameID) {
				return errs.NewFatal(fmt.Sprintf("game rules not registered: %s (table=%s)", ent.GameID, base))
			}
			entries = append(entries, ent)
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no level tables found to register")
	}
	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryByID(id string) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []string {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Summary 目錄摘要，Freeze 後才能取得，結果會被快取。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	all := l.cat.All()
	cs := make([]catalog.Summary, 0, len(all))
	for _, e := range all {
		cs = append(cs, e.Summary())
	}
	l.sum = cs
	return l.sum, nil
}

// entry 以 id 或標題找遊戲，找不到回傳 NotFound。
func (l *Lab) entry(key string) (catalog.Entry, error) {
	if !l.cat.IsFrozen() {
		return catalog.Entry{}, errs.NewFatal("catalog is not frozen yet")
	}
	e, ok := l.cat.Lookup(key)
	if !ok {
		return catalog.Entry{}, errs.NotFoundf("game %q does not exist", key)
	}
	return e, nil
}

// MapLevel 玩家等級 → 該遊戲的難度。
func (l *Lab) MapLevel(id string, playerLevel int) (int, error) {
	e, err := l.entry(id)
	if err != nil {
		return 0, err
	}
	return e.Mapper.Map(playerLevel), nil
}

// TrainingConfig 練習模式的可調選項。
func (l *Lab) TrainingConfig(id string) (dart.TrainingConfig, error) {
	e, err := l.entry(id)
	if err != nil {
		return dart.TrainingConfig{}, err
	}
	return e.Training, nil
}

// NewSession 建立一場新的對局。
//
// seed 為 0 時由 crypto/rand 產生；同樣的參數與 seed 永遠得到同樣的 session。
// level 會被夾在 [1, max_level]；練習模式下 level 只用於顯示。
func (l *Lab) NewSession(id string, level int, training bool, settings dart.Settings, seed int64) (game.Engine, error) {
	e, err := l.entry(id)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = randSeed()
	}
	return l.reg.Build(e.GameID, game.Params{
		Level:    level,
		Training: training,
		Settings: settings,
		Seed:     seed,
	})
}

// NewSimulator 建立模擬器，seed 為 0 時由 crypto/rand 產生。
func (l *Lab) NewSimulator(id string, seed int64) (*Simulator, error) {
	e, err := l.entry(id)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = randSeed()
	}
	return newSimulator(l, e, seed), nil
}

// BuildRuntime 進入執行階段：Freeze 目錄並建立 session 管理器。
func (l *Lab) BuildRuntime(opts RuntimeOptions) (*SessionRuntime, error) {
	l.Freeze()
	if len(l.cat.IDs()) == 0 {
		return nil, errs.NewFatal("no games registered")
	}
	return newSessionRuntime(l, opts), nil
}

func randSeed() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil || n.Int64() == 0 {
		return 1
	}
	return n.Int64()
}
