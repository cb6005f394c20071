package engine

import "qubic/internal/qubic"

const defaultCacheLimit = 1 << 20

// transpositionCache remembers the last score computed for each position
// during one top-level search. It only drives move ordering.
type transpositionCache struct {
	scores map[qubic.Position]float64 // 先手视角的分值
	limit  int                        // 满了之后只更新已有条目
}

func newTranspositionCache(limit int) *transpositionCache {
	if limit <= 0 {
		limit = defaultCacheLimit
	}
	return &transpositionCache{
		scores: make(map[qubic.Position]float64, 1<<12),
		limit:  limit,
	}
}

func (c *transpositionCache) get(p qubic.Position) (float64, bool) {
	v, ok := c.scores[p]
	return v, ok
}

// store overwrites known positions and drops new ones once the cap is hit;
// a missing entry only costs ordering quality.
func (c *transpositionCache) store(p qubic.Position, score float64) {
	if _, ok := c.scores[p]; !ok && len(c.scores) >= c.limit {
		return
	}
	c.scores[p] = score
}

func (c *transpositionCache) size() int { return len(c.scores) }
