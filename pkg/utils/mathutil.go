package utils

import (
	"math"
	"math/rand/v2"
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp 按 t 从 a 插值到 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// AngleDiff 返回从 a 到 b 的最短有符号旋转角, 范围 (-π, π]
func AngleDiff(a, b float64) float64 {
	d := b - a
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// Rand 基于 PCG 的带种子随机源, 每个种子(包括 0)对应独立的序列
type Rand struct {
	r *rand.Rand
}

func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^pcgStream))}
}

// pcgStream 打散 PCG 的两个种子字, 使相邻种子立即分叉
const pcgStream = 0x9e3779b97f4a7c15

func (r *Rand) NextU64() uint64 {
	return r.r.Uint64()
}

// Float64 返回 [0, 1) 区间的值
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

func (r *Rand) RangeF(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + (max-min)*r.Float64()
}
