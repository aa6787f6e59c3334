package report

import (
	"math/rand/v2"
	"time"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

// Sampler selects the subset of a category's population that goes into a report.
// It is not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler drawing from src. A nil src seeds from the clock.
func NewSampler(src rand.Source) *Sampler {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1)
	}
	return &Sampler{rng: rand.New(src)}
}

// Sample returns sampleSize distinct items chosen uniformly at random when
// 0 < sampleSize < len(items). Otherwise it returns items unchanged, in
// catalog order.
func (s *Sampler) Sample(items []domain.CatalogItem, sampleSize int) []domain.CatalogItem {
	n := len(items)
	if sampleSize <= 0 || sampleSize >= n {
		return items
	}

	// Partial Fisher-Yates over indices; the first sampleSize slots are the draw.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < sampleSize; i++ {
		j := i + s.rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	selected := make([]domain.CatalogItem, sampleSize)
	for i := 0; i < sampleSize; i++ {
		selected[i] = items[idx[i]]
	}
	return selected
}
