package qubic

import (
	"strings"

	"github.com/pkg/errors"
)

// Encode writes the four planes bottom to top, separated by '/'. Each plane
// holds 16 characters in cell order: 'X', 'O' or '.'.
func (p Position) Encode() string {
	var sb strings.Builder
	for c := Cell(0); c < NumCells; c++ {
		if c > 0 && c%16 == 0 {
			sb.WriteByte('/')
		}
		sb.WriteByte(p.cellChar(c, '.'))
	}
	return sb.String()
}

func (p Position) String() string { return p.Encode() }

func (p Position) cellChar(c Cell, empty byte) byte {
	switch {
	case p.first.Has(c):
		return 'X'
	case p.second.Has(c):
		return 'O'
	}
	return empty
}

// DecodePosition parses the Encode format.
func DecodePosition(s string) (Position, error) {
	planes := strings.Split(strings.TrimSpace(s), "/")
	if len(planes) != Size {
		return Position{}, errors.Wrapf(ErrInvalidArgument, "want %d planes, got %d", Size, len(planes))
	}
	var first, second Bitboard
	for pi, plane := range planes {
		if len(plane) != Size*Size {
			return Position{}, errors.Wrapf(ErrInvalidArgument, "plane %d has %d cells", pi, len(plane))
		}
		for k := 0; k < len(plane); k++ {
			c := Cell(pi*Size*Size + k)
			switch plane[k] {
			case 'X', 'x':
				first |= c.Bit()
			case 'O', 'o':
				second |= c.Bit()
			case '.', ' ':
			default:
				return Position{}, errors.Wrapf(ErrInvalidArgument, "unexpected %q in plane %d", plane[k], pi)
			}
		}
	}
	return FromBitboards(first, second)
}

// Render draws the planes top to bottom, each with its lines top to bottom
// and indexes left to right, followed by the result line.
func (p Position) Render() string {
	var sb strings.Builder
	for plane := Size - 1; plane >= 0; plane-- {
		for line := Size - 1; line >= 0; line-- {
			for index := 0; index < Size; index++ {
				if index > 0 {
					sb.WriteByte('|')
				}
				sb.WriteByte(p.cellChar(indexOf(plane, line, index), ' '))
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	switch p.Winner() {
	case FirstWin:
		sb.WriteString("X won!")
	case SecondWin:
		sb.WriteString("O won!")
	case Draw:
		sb.WriteString("Draw!")
	default:
		sb.WriteString("_______")
	}
	sb.WriteByte('\n')
	return sb.String()
}
