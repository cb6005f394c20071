package qubic

import "github.com/pkg/errors"

// Cell indexes the cube as 16*plane + 4*line + index.
type Cell int8

func indexOf(plane, line, index int) Cell { return Cell(16*plane + 4*line + index) }

func onBoard(v int) bool { return v >= 0 && v < Size }

// CellAt validates the coordinates and returns the matching cell.
func CellAt(plane, line, index int) (Cell, error) {
	if !onBoard(plane) || !onBoard(line) || !onBoard(index) {
		return 0, errors.Wrapf(ErrInvalidArgument, "cell (%d,%d,%d) out of range [0,%d]", plane, line, index, Size-1)
	}
	return indexOf(plane, line, index), nil
}

func (c Cell) Valid() bool { return c >= 0 && c < NumCells }

func (c Cell) Bit() Bitboard {
	if !c.Valid() {
		return 0
	}
	return Bitboard(1) << uint(c)
}

func (c Cell) Coords() (plane, line, index int) {
	v := int(c)
	return v / 16, (v / 4) % 4, v % 4
}

// SquareType classifies cells by how many of their coordinates lie on the
// outer shell of the cube; cells of one type are equivalent under the cube's
// symmetries.
type SquareType uint8

const (
	Center SquareType = iota // no outer coordinate
	Corner                   // three outer coordinates
	Edge                     // two
	Face                     // one
	NumSquareTypes
)

var squareTypeNames = [NumSquareTypes]string{"Center", "Corner", "Edge", "Face"}

func (t SquareType) String() string {
	if t >= NumSquareTypes {
		return "Unknown"
	}
	return squareTypeNames[t]
}

func AllSquareTypes() []SquareType {
	return []SquareType{Center, Corner, Edge, Face}
}

var (
	cellTypes   [NumCells]SquareType
	squareMasks [NumSquareTypes]Bitboard
)

func init() {
	outer := func(v int) int {
		if v == 0 || v == Size-1 {
			return 1
		}
		return 0
	}
	// 按落在外壳上的坐标个数分类：0 中心，1 面，2 棱，3 角
	byOuter := [4]SquareType{Center, Face, Edge, Corner}
	for c := Cell(0); c < NumCells; c++ {
		p, l, i := c.Coords()
		t := byOuter[outer(p)+outer(l)+outer(i)]
		cellTypes[c] = t
		squareMasks[t] |= c.Bit()
	}
}

func SquareTypeOf(c Cell) SquareType { return cellTypes[c] }

// SquareMask returns every cell of type t.
func SquareMask(t SquareType) Bitboard { return squareMasks[t] }
