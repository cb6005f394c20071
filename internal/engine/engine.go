package engine

import (
	"math/rand"
	"time"

	"qubic/internal/qubic"
)

// WinBase is the magnitude of a decided game before the remaining-depth
// bonus. It outranks any static score, and a faster win scores higher.
const WinBase = 1000

// Engine chooses moves for the side to move. It is not safe for concurrent
// use: the random source is not synchronised. Run one Engine per goroutine,
// sharing the UtilityFunction read-only.
type Engine struct {
	utility *UtilityFunction // 只读共享的估值函数
	rng     *rand.Rand       // 根节点随机源，每次搜索从这里派生各 worker 的种子
	nodes   int64            // 上一次搜索访问的节点数
}

// NewEngine binds an engine to a utility function and a random source. A nil
// utility function starts from zero weights; a nil source is seeded from the
// clock.
func NewEngine(u *UtilityFunction, rng *rand.Rand) *Engine {
	if u == nil {
		u = NewUtilityFunction()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{utility: u, rng: rng}
}

func (e *Engine) Utility() *UtilityFunction { return e.utility }

// Nodes returns the node count of the last search.
func (e *Engine) Nodes() int64 { return e.nodes }

// BestMove searches exactly maxDepth plies. maxDepth <= 0 plays a uniformly
// random legal move.
func (e *Engine) BestMove(pos qubic.Position, maxDepth int) (qubic.Position, error) {
	return e.BestMoveRange(pos, maxDepth, maxDepth)
}

// BestMoveRange searches at least minDepth plies and keeps extending lines
// that are not static up to maxDepth.
func (e *Engine) BestMoveRange(pos qubic.Position, minDepth, maxDepth int) (qubic.Position, error) {
	res, err := e.Search(pos, SearchConfig{MinDepth: minDepth, MaxDepth: maxDepth, Workers: 1})
	if err != nil {
		return pos, err
	}
	return res.Best, nil
}

// RandomMove picks a uniformly random successor.
func (e *Engine) RandomMove(pos qubic.Position) (qubic.Position, error) {
	return e.BestMove(pos, 0)
}
