// Package core: the bounded generation in uint64n follows the multiply-and-reject
// method used by math/rand (BSD 3-Clause).

package core

import (
	"math/bits"
	r2 "math/rand/v2"
)

// PCG64 包一層 math/rand/v2 的 PCG，補上 seed 展開與有界取樣。
type PCG64 struct {
	rng *r2.PCG
}

// newPCG64WithSeed 用 splitmix64 把單一 int64 展開成 PCG 需要的兩個狀態字。
func newPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	return &PCG64{rng: r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))}
}

func (r *PCG64) Uint64() uint64 {
	return r.rng.Uint64()
}

// IntN 產出 [0,n)，n <= 0 回傳 -1
func (r *PCG64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(r.uint64n(uint64(n)))
}

// Float64 53 bits 精度
func (r *PCG64) Float64() float64 {
	return float64(r.Uint64()<<11>>11) / (1 << 53)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func (r *PCG64) uint64n(n uint64) uint64 {
	if n&(n-1) == 0 {
		return r.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(r.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(r.Uint64(), n)
		}
	}
	return hi
}
