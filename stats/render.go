package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/zintix-labs/dartlab/errs"
	"gopkg.in/yaml.v3"
)

// Format 報表輸出格式
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errs.Warnf("unknown output format %q (table, json, yaml)", s)
	}
}

// Render 把報表 T 寫到 w
type Render[T any] interface {
	Write(w io.Writer, v *T) error
}

// RenderOf 依格式取得 Render；table 由報表自己的 StdOut / Out 處理，回傳 nil
func RenderOf[T any](f Format) Render[T] {
	switch f {
	case FormatJSON:
		return JSONRender[T]{Indent: "  "}
	case FormatYAML:
		return YAMLRender[T]{}
	default:
		return nil
	}
}

// Json渲染
type JSONRender[T any] struct {
	Indent string
}

func (r JSONRender[T]) Write(w io.Writer, v *T) error {
	enc := json.NewEncoder(w)
	if r.Indent != "" {
		enc.SetIndent("", r.Indent)
	}
	return enc.Encode(v)
}

// YAML渲染：最內層的一維陣列輸出成 flow style [..., ...]
type YAMLRender[T any] struct{}

func (YAMLRender[T]) Write(w io.Writer, v *T) error {
	return forceReadableList(w, v)
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}

	// 自頂向下調整所有 sequence node 的 style：
	// - 若該 sequence 內部「沒有子 sequence」，代表它是最內層的一維（或本身就是一維）=> 用 flow style: [...]
	// - 若該 sequence 內部「有子 sequence」，代表它是外層維度 => 保持預設 block（展開）
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
		return

	case yaml.SequenceNode:
		// 先判斷這個 sequence 是否包含子 sequence（代表外層維度）
		hasChildSeq := false
		for _, c := range n.Content {
			if c != nil && c.Kind == yaml.SequenceNode {
				hasChildSeq = true
				break
			}
		}

		// 先遞迴處理子節點（讓最內層先被標記成 flow）
		for _, c := range n.Content {
			styleReadableSequences(c)
		}

		// 最內層一維（或本身就是一維）=> flow style: [a, b, c]
		// 外層維度 => 保持預設 block style（不強制設定 style）
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
		return

	default:
		// Scalar / Alias 等不處理
		return
	}
}
