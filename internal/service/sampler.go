package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Sampler 均匀随机抽样（不放回）
type Sampler interface {
	// Intn 返回 [0, n) 内的随机数
	Intn(n int) int
}

// RandSampler 基于 math/rand/v2，可用固定种子复现
type RandSampler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandSampler(seed uint64) *RandSampler {
	return &RandSampler{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSampler 以当前时间为种子
func NewTimeSampler() *RandSampler {
	return NewRandSampler(uint64(time.Now().UnixNano()))
}

func (s *RandSampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// SampleN 从 items 中随机取最多 k 个，不修改原切片
func SampleN[T any](s Sampler, items []T, k int) []T {
	if k > len(items) {
		k = len(items)
	}
	if k <= 0 {
		return []T{}
	}

	pool := make([]T, len(items))
	copy(pool, items)
	// 部分 Fisher-Yates：只洗前 k 位
	for i := 0; i < k; i++ {
		j := i + s.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// PickOne 随机取一个，空切片返回零值和 false
func PickOne[T any](s Sampler, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[s.Intn(len(items))], true
}
