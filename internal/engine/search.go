package engine

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"qubic/internal/qubic"
)

// SearchConfig bounds one top-level search.
type SearchConfig struct {
	// MinDepth is the horizon for static positions. Zero or anything above
	// MaxDepth means "same as MaxDepth", i.e. no extension.
	MinDepth int `json:"min_depth"`
	// MaxDepth is the hard horizon. <= 0 picks a random legal move.
	MaxDepth int `json:"max_depth"`
	// Workers splits the root children across goroutines, each with its own
	// cache and random source.
	Workers    int `json:"workers"`
	CacheLimit int `json:"cache_limit"` // 置换表容量，<= 0 用默认值
}

func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MinDepth: 2, MaxDepth: 4, Workers: 1}
}

type SearchResult struct {
	Best     qubic.Position // position after the chosen move
	Cell     qubic.Cell     // the chosen move
	Score    float64        // first player's point of view
	Depth    int            // deepest completed iteration
	Nodes    int64
	TimeUsed time.Duration
	Random   bool // no search was run
}

// searcher owns the mutable state of one goroutine's search.
type searcher struct {
	utility *UtilityFunction
	cache   *transpositionCache // 局面 -> 分值，只用于排序
	rng     *rand.Rand          // 同分着法的打乱顺序
	span    int                 // remaining depth at or below which static positions stop
	nodes   int64
}

func newSearcher(u *UtilityFunction, seed int64, span, cacheLimit int) *searcher {
	return &searcher{
		utility: u,
		cache:   newTranspositionCache(cacheLimit),
		rng:     rand.New(rand.NewSource(seed)),
		span:    span,
	}
}

// Search runs iterative deepening from depth 1 to cfg.MaxDepth. Every root
// child is searched with the full window, so the reported scores are exact
// and the choice does not depend on move ordering. Ties go to the child
// evaluated first in the final pass.
func (e *Engine) Search(pos qubic.Position, cfg SearchConfig) (SearchResult, error) {
	return e.SearchContext(context.Background(), pos, cfg)
}

// SearchContext is Search with cancellation. The context is checked before
// each root child; a cancelled pass is discarded and the last completed one
// is returned. Cancellation before the first pass completes is an error.
func (e *Engine) SearchContext(ctx context.Context, pos qubic.Position, cfg SearchConfig) (SearchResult, error) {
	if o := pos.Winner(); o.Decided() {
		return SearchResult{}, errors.Wrapf(qubic.ErrInvalidState, "no move from a finished game (%s)", o)
	}
	start := time.Now()
	e.nodes = 0
	children := pos.LegalMoves()

	// 深度 <= 0：不搜索，随机走一步
	if cfg.MaxDepth <= 0 {
		best := children[e.rng.Intn(len(children))]
		return e.result(pos, best, 0, 0, start, true), nil
	}

	minDepth := cfg.MinDepth
	if minDepth <= 0 || minDepth > cfg.MaxDepth {
		minDepth = cfg.MaxDepth
	}
	span := cfg.MaxDepth - minDepth // 延伸区间：剩余深度在此之内的静止局面直接评估
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(children) {
		workers = len(children)
	}

	// 根节点排序用独立的随机源，这样 worker 数量不会改变同分时选中的着法
	root := newSearcher(e.utility, e.rng.Int63(), span, cfg.CacheLimit)
	pool := make([]*searcher, workers)
	for i := range pool {
		// 每个 worker 自己的缓存和随机源，跨迭代保留
		pool[i] = newSearcher(e.utility, e.rng.Int63(), span, cfg.CacheLimit)
	}

	maximize := pos.ToMove() == qubic.First
	bound := float64(WinBase + cfg.MaxDepth) // 全窗口，任何真实分值都严格落在其中
	var best qubic.Position
	var bestScore float64
	completed := 0

	for depth := 1; depth <= cfg.MaxDepth; depth++ {
		root.order(children, maximize)
		scores, err := searchChildren(ctx, pool, children, depth-1, bound)
		if err != nil {
			if completed == 0 {
				return SearchResult{}, errors.Wrap(err, "search cancelled before depth 1")
			}
			// 本轮作废，沿用上一轮完整结果
			log.Debug().Int("depth", depth).Err(err).Msg("pass abandoned")
			break
		}

		pick := -1
		for i, v := range scores {
			root.cache.store(children[i], v)
			// 严格比较：同分保留本轮先算到的着法
			if pick < 0 || (maximize && v > bestScore) || (!maximize && v < bestScore) {
				pick, bestScore = i, v
			}
		}
		best = children[pick]
		completed = depth

		log.Debug().
			Int("depth", depth).
			Float64("score", bestScore).
			Int("children", len(children)).
			Int("cache", root.cache.size()).
			Msg("deepening-iteratively")
	}

	for _, s := range pool {
		e.nodes += s.nodes
	}
	return e.result(pos, best, bestScore, completed, start, false), nil
}

func (e *Engine) result(pos, best qubic.Position, score float64, depth int, start time.Time, random bool) SearchResult {
	cell, _ := qubic.MoveBetween(pos, best)
	return SearchResult{
		Best:     best,
		Cell:     cell,
		Score:    score,
		Depth:    depth,
		Nodes:    e.nodes,
		TimeUsed: time.Since(start),
		Random:   random,
	}
}

// searchChildren scores every child with remaining depth rem. Worker w takes
// children w, w+n, w+2n... and keeps its cache across iterations. The first
// worker to see a cancelled context stops the others.
func searchChildren(ctx context.Context, pool []*searcher, children []qubic.Position, rem int, bound float64) ([]float64, error) {
	scores := make([]float64, len(children))
	g, gctx := errgroup.WithContext(ctx)
	for w, s := range pool {
		w, s := w, s
		g.Go(func() error {
			for i := w; i < len(children); i += len(pool) {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores[i] = s.alphaBeta(children[i], rem, -bound, bound)
				s.cache.store(children[i], scores[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

type ranked struct {
	pos   qubic.Position
	score float64
	known bool
}

// order shuffles the children, then moves cached ones to the front, best
// first for the side to move. The sort is stable so uncached children keep
// their shuffled order.
func (s *searcher) order(children []qubic.Position, maximize bool) {
	s.rng.Shuffle(len(children), func(i, j int) {
		children[i], children[j] = children[j], children[i]
	})
	rs := make([]ranked, len(children))
	for i, c := range children {
		v, ok := s.cache.get(c)
		rs[i] = ranked{pos: c, score: v, known: ok}
	}
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if a.known != b.known {
			return a.known
		}
		if !a.known {
			return false
		}
		if maximize {
			return a.score > b.score
		}
		return a.score < b.score
	})
	for i := range rs {
		children[i] = rs[i].pos
	}
}

// alphaBeta returns the value of pos from the first player's point of view
// with depth plies left. A decided game scores sign*(WinBase+depth), so a
// quicker win ranks higher. Inside the extension band only positions with an
// open three keep being searched.
func (s *searcher) alphaBeta(pos qubic.Position, depth int, alpha, beta float64) float64 {
	s.nodes++

	// 终局：越快赢分越高
	if o := pos.Winner(); o.Decided() {
		return float64(o.Sign() * (WinBase + depth))
	}
	// 叶子：深度用完，或进入延伸区间且局面静止
	if depth <= 0 || (depth <= s.span && pos.IsStatic()) {
		return s.utility.Score(pos)
	}

	children := pos.LegalMoves()
	maximize := pos.ToMove() == qubic.First
	s.order(children, maximize)

	if maximize {
		best := -float64(WinBase + depth)
		for _, child := range children {
			v := s.alphaBeta(child, depth-1, alpha, beta)
			s.cache.store(child, v)
			if v > best {
				best = v
			}
			if v > alpha {
				alpha = v
			}
			if alpha >= beta {
				break // 剪枝
			}
		}
		return best
	}

	best := float64(WinBase + depth)
	for _, child := range children {
		v := s.alphaBeta(child, depth-1, alpha, beta)
		s.cache.store(child, v)
		if v < best {
			best = v
		}
		if v < beta {
			beta = v
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
