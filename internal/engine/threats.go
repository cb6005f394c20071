package engine

import (
	"qubic/internal/qubic"
)

// 连续威胁搜索参数
const (
	threatDefaultDepth     = 8
	threatDepthCap         = 24
	threatNodeBudgetBase   = 32000
	threatNodeBudgetPerPly = 8000
)

type threatEntry struct {
	depth  int        // 得出结论时的剩余深度，更深的结论可以复用
	result bool       // 进攻方能否强制取胜
	cell   qubic.Cell // 进攻方的第一手
}

type threatContext struct {
	attack     map[qubic.Position]threatEntry // 进攻方走棋的局面
	defend     map[qubic.Position]threatEntry // 防守方走棋的局面
	nodes      int
	nodeBudget int // 超过预算就放弃，报告无解
}

// ThreatResult reports a forced win by continuous threats.
type ThreatResult struct {
	CanWin bool
	Cell   qubic.Cell // first attacking move, or -1
	Nodes  int
}

// ThreatSearch looks for a win where every attacking move makes an open
// three, so each defender reply is forced. maxDepth counts plies of both
// sides. A node budget bounds the work; running out reports no win.
func ThreatSearch(pos qubic.Position, maxDepth int) ThreatResult {
	if maxDepth <= 0 {
		maxDepth = threatDefaultDepth
	}
	if maxDepth > threatDepthCap {
		maxDepth = threatDepthCap
	}
	if pos.Winner().Decided() {
		return ThreatResult{Cell: -1}
	}
	ctx := &threatContext{
		attack:     make(map[qubic.Position]threatEntry, 1<<10),
		defend:     make(map[qubic.Position]threatEntry, 1<<10),
		nodeBudget: threatNodeBudgetBase + maxDepth*threatNodeBudgetPerPly,
	}
	// Deepen two plies at a time so the shortest win is found first.
	for d := 1; d <= maxDepth; d += 2 {
		if cell, ok := ctx.attackerCanForce(pos, d); ok {
			return ThreatResult{CanWin: true, Cell: cell, Nodes: ctx.nodes}
		}
		if ctx.reachNodeBudget() {
			break
		}
	}
	return ThreatResult{Cell: -1, Nodes: ctx.nodes}
}

// gaps returns the free cell of every open three pl holds, deduplicated.
func gaps(pos qubic.Position, pl qubic.Player) qubic.Bitboard {
	var out qubic.Bitboard
	own := pos.Stones(pl)
	for _, l := range pos.Threats(pl) {
		out |= l &^ own
	}
	return out
}

func (ctx *threatContext) attackerCanForce(pos qubic.Position, depth int) (qubic.Cell, bool) {
	attacker := pos.ToMove()
	// 自己已有活三：直接连成四
	if own := gaps(pos, attacker); own != 0 {
		return own.Cells()[0], true
	}
	if depth <= 1 || ctx.reachNodeBudget() {
		return -1, false
	}
	if e, ok := ctx.attack[pos]; ok && e.depth >= depth {
		return e.cell, e.result
	}

	candidates := pos.Free()
	// A defender three must be blocked first.
	if block := gaps(pos, attacker.Opponent()); block != 0 {
		candidates = block
	}

	result, best := false, qubic.Cell(-1)
	for _, c := range candidates.Cells() {
		if ctx.reachNodeBudget() {
			break
		}
		next, err := pos.Apply(c)
		if err != nil {
			continue
		}
		// 只考虑能形成新威胁的着法
		if gaps(next, attacker) == 0 {
			continue
		}
		if !ctx.defenderCanEscape(next, depth-1) {
			result, best = true, c
			break
		}
	}
	ctx.attack[pos] = threatEntry{depth: depth, result: result, cell: best}
	return best, result
}

func (ctx *threatContext) defenderCanEscape(pos qubic.Position, depth int) bool {
	if pos.Winner().Decided() {
		return pos.Winner() == qubic.Draw
	}
	defender := pos.ToMove()
	// 防守方自己有活三，下一手就赢
	if gaps(pos, defender) != 0 {
		return true
	}
	if e, ok := ctx.defend[pos]; ok && e.depth >= depth {
		return e.result
	}

	threats := gaps(pos, defender.Opponent())
	result := true
	switch threats.Count() {
	case 0:
		// 进攻方没有威胁，防守方自由应对
	case 1:
		// 唯一的防守点
		next, err := pos.Apply(threats.Cells()[0])
		if err == nil {
			_, forced := ctx.attackerCanForce(next, depth-1)
			result = !forced
		}
	default:
		// 双活三，挡不住
		result = false
	}
	ctx.defend[pos] = threatEntry{depth: depth, result: result}
	return result
}

func (ctx *threatContext) reachNodeBudget() bool {
	ctx.nodes++
	return ctx.nodes > ctx.nodeBudget
}

// SafeCells drops moves after which the opponent has a forced threat win
// within depth plies. If every move loses, all legal cells are returned.
func SafeCells(pos qubic.Position, depth int) []qubic.Cell {
	legal := pos.LegalCells()
	if len(legal) <= 1 {
		return legal
	}
	safe := make([]qubic.Cell, 0, len(legal))
	for _, c := range legal {
		next, err := pos.Apply(c)
		if err != nil {
			continue
		}
		if next.Winner().Decided() || !ThreatSearch(next, depth).CanWin {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		return legal
	}
	return safe
}
