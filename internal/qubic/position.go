package qubic

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Position is an immutable board state. The side to move is derived from the
// number of occupied cells, so two positions with the same stones are equal
// and Position can be used directly as a map key.
type Position struct {
	first  Bitboard // 先手 X 的棋子
	second Bitboard // 后手 O 的棋子
}

// NewPosition returns the empty starting board.
func NewPosition() Position { return Position{} }

// FromBitboards builds a position from raw occupancy sets. The sets must be
// disjoint and the first player must have the same number of stones as the
// second player or one more.
func FromBitboards(first, second Bitboard) (Position, error) {
	if first&second != 0 {
		return Position{}, errors.Wrapf(ErrInvalidArgument, "overlapping occupancy %#x", uint64(first&second))
	}
	// 先手最多比后手多一子
	diff := first.Count() - second.Count()
	if diff != 0 && diff != 1 {
		return Position{}, errors.Wrapf(ErrInvalidArgument, "stone counts %d/%d cannot arise from alternating play", first.Count(), second.Count())
	}
	return Position{first: first, second: second}, nil
}

func (p Position) First() Bitboard    { return p.first }
func (p Position) Second() Bitboard   { return p.second }
func (p Position) Occupied() Bitboard { return p.first | p.second }
func (p Position) Free() Bitboard     { return ^(p.first | p.second) }
func (p Position) Ply() int           { return bits.OnesCount64(uint64(p.first | p.second)) }

func (p Position) Stones(pl Player) Bitboard {
	switch pl {
	case First:
		return p.first
	case Second:
		return p.second
	}
	return 0
}

func (p Position) ToMove() Player {
	if p.Ply()%2 == 0 {
		return First
	}
	return Second
}

// Swap exchanges the two occupancy sets. The result is only meant for
// evaluation symmetry checks and may not be reachable by legal play.
func (p Position) Swap() Position { return Position{first: p.second, second: p.first} }

// Winner scans the line table.
func (p Position) Winner() Outcome {
	for _, l := range lineTable {
		if p.first&l == l {
			return FirstWin
		}
		if p.second&l == l {
			return SecondWin
		}
	}
	// 填满且无人连成一线
	if p.first|p.second == FullBoard {
		return Draw
	}
	return Undecided
}

// Apply places a stone for the side to move.
func (p Position) Apply(c Cell) (Position, error) {
	if !c.Valid() {
		return p, errors.Wrapf(ErrInvalidArgument, "cell %d out of range", c)
	}
	if o := p.Winner(); o.Decided() {
		return p, errGameOver(o)
	}
	if p.Occupied().Has(c) {
		pl, li, ix := c.Coords()
		return p, errors.Wrapf(ErrInvalidArgument, "cell (%d,%d,%d) already occupied", pl, li, ix)
	}
	return p.place(c), nil
}

// Move is Apply addressed by plane, line and index.
func (p Position) Move(plane, line, index int) (Position, error) {
	c, err := CellAt(plane, line, index)
	if err != nil {
		return p, err
	}
	return p.Apply(c)
}

// place skips validation; callers guarantee c is free and the game undecided.
func (p Position) place(c Cell) Position {
	np := p
	if p.ToMove() == First {
		np.first |= c.Bit()
	} else {
		np.second |= c.Bit()
	}
	return np
}

// MoveBetween returns the cell played to get from parent to child.
func MoveBetween(parent, child Position) (Cell, bool) {
	added := child.Occupied() &^ parent.Occupied()
	if added.Count() != 1 || parent.Occupied()&^child.Occupied() != 0 {
		return 0, false
	}
	return Cell(bits.TrailingZeros64(uint64(added))), true
}
