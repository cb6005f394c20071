package qubic

// LegalCells lists the free cells in ascending order, or nothing once the
// game is decided.
func (p Position) LegalCells() []Cell {
	if p.Winner().Decided() {
		return nil
	}
	return p.Free().Cells()
}

// LegalMoves returns one successor per free cell, in the order of
// LegalCells. Callers wanting randomised order shuffle with their own source.
func (p Position) LegalMoves() []Position {
	if p.Winner().Decided() {
		return nil
	}
	return p.successors()
}

func (p Position) successors() []Position {
	free := p.Free()
	out := make([]Position, 0, free.Count())
	for _, c := range free.Cells() {
		out = append(out, p.place(c))
	}
	return out
}

// IsStatic reports whether the side to move faces no immediate threat: no
// line holds three opponent stones with the fourth cell free.
func (p Position) IsStatic() bool {
	mover := p.ToMove()
	defender := p.Stones(mover)
	attacker := p.Stones(mover.Opponent())
	for _, l := range lineTable {
		// 对手三子且第四格空着
		if (attacker&l).Count() == 3 && defender&l == 0 {
			return false
		}
	}
	return true
}

// Threats returns the lines on which pl needs one more stone to win.
func (p Position) Threats(pl Player) []Bitboard {
	own := p.Stones(pl)
	other := p.Stones(pl.Opponent())
	var out []Bitboard
	for _, l := range lineTable {
		if (own&l).Count() == 3 && other&l == 0 {
			out = append(out, l)
		}
	}
	return out
}
