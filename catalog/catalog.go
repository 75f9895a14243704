package catalog

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/zintix-labs/dartlab/errs"
	"github.com/zintix-labs/dartlab/sdk/dart"
	"github.com/zintix-labs/dartlab/setting"
)

var (
	ErrDupID   = errs.NewFatal("duplicate game id")
	ErrDupName = errs.NewFatal("duplicate game title")
)

// Entry 一款遊戲在目錄中的資料，來自關卡表的表頭。
type Entry struct {
	GameID     string
	Title      string
	Category   dart.Category
	Input      dart.Input
	ConfigName string
	Levels     []int // 表中明確定義的等級
	Mapper     setting.Mapper
	Training   dart.TrainingConfig
}

// MaxLevel 遊戲難度上限。
func (e Entry) MaxLevel() int { return max(1, e.Mapper.Max) }

// Summary 對外列出的遊戲資訊。
type Summary struct {
	GameID   string        `json:"game_id"`
	Title    string        `json:"title"`
	Category dart.Category `json:"category"`
	Input    dart.Input    `json:"input"`
	MaxLevel int           `json:"max_level"`
	Levels   []int         `json:"levels"`
}

func (e Entry) Summary() Summary {
	return Summary{
		GameID:   e.GameID,
		Title:    e.Title,
		Category: e.Category,
		Input:    e.Input,
		MaxLevel: e.MaxLevel(),
		Levels:   append([]int(nil), e.Levels...),
	}
}

type Catalog struct {
	byID   map[string]Entry
	byName map[string]Entry
	ids    []string            // 用來穩定排序
	unique map[string]struct{} // 一組遊戲，檔名需唯一
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[string]Entry{},
		byName: map[string]Entry{},
		ids:    make([]string, 0, 16),
		unique: map[string]struct{}{},
		config: multFS,
		frozen: false,
	}, nil
}

func nameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c *Catalog) Register(metas ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[string]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for _, meta := range metas {
		if strings.TrimSpace(meta.GameID) == "" {
			return errs.NewFatal("game id required")
		}
		if nameKey(meta.Title) == "" {
			return errs.NewFatal(fmt.Sprintf("%s: title required", meta.GameID))
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[meta.ConfigName]; !ok {
			return errs.NewFatal(fmt.Sprintf("config file not found: %s", meta.ConfigName))
		}
		if _, ok := c.byID[meta.GameID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[nameKey(meta.Title)]; ok {
			return ErrDupName
		}
		if _, ok := c.unique[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		if _, ok := seenID[meta.GameID]; ok {
			return ErrDupID
		}
		if _, ok := seenName[nameKey(meta.Title)]; ok {
			return ErrDupName
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate config name: %s", meta.ConfigName))
		}
		seenID[meta.GameID] = struct{}{}
		seenName[nameKey(meta.Title)] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for _, meta := range metas {
		c.unique[meta.ConfigName] = struct{}{}
		c.byID[meta.GameID] = meta
		c.byName[nameKey(meta.Title)] = meta
		c.ids = append(c.ids, meta.GameID)
	}
	sort.Strings(c.ids)
	return nil
}

func (c *Catalog) GetByID(id string) (Entry, bool) {
	m, ok := c.byID[strings.TrimSpace(id)]
	return m, ok
}

// GetByName 以標題查詢，不分大小寫。
func (c *Catalog) GetByName(name string) (Entry, bool) {
	m, ok := c.byName[nameKey(name)]
	return m, ok
}

// Lookup 先以 id 查，找不到再以標題查。
func (c *Catalog) Lookup(key string) (Entry, bool) {
	if e, ok := c.GetByID(key); ok {
		return e, true
	}
	return c.GetByName(key)
}

func (c *Catalog) IDs() []string {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]string(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	order := c.IDs()
	m := make([]Entry, 0, len(c.ids))
	for _, id := range order {
		if meta, ok := c.GetByID(id); ok {
			m = append(m, meta)
		}
	}
	return m
}

func (c *Catalog) Cfg() *multiFS {
	return c.config
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// Raw 讀出遊戲關卡表的原始內容。
func (c *Catalog) Raw(id string) ([]byte, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.NotFoundf("game %s does not exist in catalog", id)
	}
	src, ok := c.config.GetFS(e.ConfigName)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	return raw, nil
}

// EntryFromFile 解析關卡表的表頭，產生目錄項目。
func EntryFromFile(name string, raw []byte) (Entry, error) {
	if err := validFileName(name); err != nil {
		return Entry{}, err
	}
	h, levels, err := setting.DecodeHeader(raw)
	if err != nil {
		return Entry{}, errs.Wrap(err, fmt.Sprintf("parse table failed: %s", name))
	}
	return Entry{
		GameID:     h.GameID,
		Title:      h.Title,
		Category:   h.Category,
		Input:      h.Input,
		ConfigName: name,
		Levels:     levels,
		Mapper:     h.Mapper,
		Training:   h.Training,
	}, nil
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml 結尾（大小寫不敏感）
	lower := strings.ToLower(file)
	if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml or .yml)", file))
	}
	// 3) 不能以 . 開頭（防止直接 .yaml / .yml）
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}

	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 關卡表目錄必須是平的，只允許根目錄
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("table FS must be flat (no subdirectories): %q", path))
			}
			lower := strings.ToLower(path)
			if !(strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate table %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}

// Sources exposes table FS sources for read-only iteration.
func (m *multiFS) Sources() []fs.FS {
	if m == nil || len(m.src) == 0 {
		return nil
	}
	return append([]fs.FS(nil), m.src...)
}
