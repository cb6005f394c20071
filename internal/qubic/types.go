package qubic

import "math/bits"

const (
	Size     = 4
	NumCells = Size * Size * Size
)

type Player int8

const (
	NoPlayer Player = -1
	First    Player = 0 // X, moves on even occupancy
	Second   Player = 1 // O
)

func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	}
	return NoPlayer
}

func (p Player) String() string {
	switch p {
	case First:
		return "X"
	case Second:
		return "O"
	}
	return "-"
}

// Outcome is the state of a game: still going, won by one side or drawn.
type Outcome int8

const (
	Undecided Outcome = iota
	FirstWin
	SecondWin
	Draw
)

func (o Outcome) Decided() bool { return o != Undecided }

// Sign is +1 for a first-player win, -1 for a second-player win and 0 otherwise.
func (o Outcome) Sign() int {
	switch o {
	case FirstWin:
		return 1
	case SecondWin:
		return -1
	}
	return 0
}

func (o Outcome) Winner() Player {
	switch o {
	case FirstWin:
		return First
	case SecondWin:
		return Second
	}
	return NoPlayer
}

func (o Outcome) String() string {
	switch o {
	case FirstWin:
		return "first_won"
	case SecondWin:
		return "second_won"
	case Draw:
		return "draw"
	}
	return "ongoing"
}

// Bitboard is a set of cells, bit i standing for cell i.
type Bitboard uint64

const FullBoard Bitboard = ^Bitboard(0)

func (b Bitboard) Has(c Cell) bool { return b&c.Bit() != 0 }
func (b Bitboard) Count() int      { return bits.OnesCount64(uint64(b)) }

// Cells lists the members of b in ascending order.
func (b Bitboard) Cells() []Cell {
	out := make([]Cell, 0, b.Count())
	for rest := uint64(b); rest != 0; rest &= rest - 1 {
		out = append(out, Cell(bits.TrailingZeros64(rest)))
	}
	return out
}
