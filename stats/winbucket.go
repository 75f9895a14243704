package stats

import (
	"fmt"

	"github.com/zintix-labs/dartlab/sdk/dart"
)

// SRBucketSet
//
// 用來快速定位 SR -> DistReport 位置 O(1)
//
// 請勿修改預設值
//   - SR 區間: [0,0], [1,20), [20,40), ..., [160,180), [180,180]
type SRBucketSet struct {
	edges  []int
	labels []string
	lut    []int
}

// SRBuckets 預設 SR 區間
var SRBuckets *SRBucketSet = buildSRBuckets([]int{0, 1, 20, 40, 60, 80, 100, 120, 140, 160, dart.SRMax})

func buildSRBuckets(edges []int) *SRBucketSet {
	labels := make([]string, len(edges))
	labels[0] = "[0,0]"
	for i := 1; i < len(edges)-1; i++ {
		labels[i] = fmt.Sprintf("[%d,%d)", edges[i], edges[i+1])
	}
	last := edges[len(edges)-1]
	labels[len(edges)-1] = fmt.Sprintf("[%d,%d]", last, last)

	// lut[sr] = idx
	lut := make([]int, last+1)
	idx := 0
	for sr := 0; sr <= last; sr++ {
		for idx < len(edges)-1 && sr >= edges[idx+1] {
			idx++
		}
		lut[sr] = idx
	}
	return &SRBucketSet{edges: edges, labels: labels, lut: lut}
}

func (b *SRBucketSet) Labels() []string {
	out := make([]string, len(b.labels))
	copy(out, b.labels)
	return out
}

func (b *SRBucketSet) Len() int {
	return len(b.labels)
}

// Index 超出範圍的 SR 夾在兩端。
func (b *SRBucketSet) Index(sr int) int {
	if sr <= 0 {
		return 0
	}
	if sr >= len(b.lut) {
		return b.lut[len(b.lut)-1]
	}
	return b.lut[sr]
}
