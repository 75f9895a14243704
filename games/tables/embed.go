package tables

import (
	"embed"
)

// FS 內嵌的關卡表，每款遊戲一份 YAML。
//
//go:embed *.yaml
var FS embed.FS
