package qubic

const NumLines = 76

var lineTable = buildLines()

// buildLines walks every start cell and direction and keeps each maximal
// 4-cell segment once.
func buildLines() []Bitboard {
	seen := make(map[Bitboard]bool, NumLines)
	out := make([]Bitboard, 0, NumLines)
	for p := 0; p < Size; p++ {
		for l := 0; l < Size; l++ {
			for i := 0; i < Size; i++ {
				for dp := -1; dp <= 1; dp++ {
					for dl := -1; dl <= 1; dl++ {
						for di := -1; di <= 1; di++ {
							if dp == 0 && dl == 0 && di == 0 {
								continue
							}
							// 沿方向走 4 格，出界就不是一条线
							var mask Bitboard
							ok := true
							for k := 0; k < Size; k++ {
								cp, cl, ci := p+k*dp, l+k*dl, i+k*di
								if !onBoard(cp) || !onBoard(cl) || !onBoard(ci) {
									ok = false
									break
								}
								mask |= indexOf(cp, cl, ci).Bit()
							}
							// 反方向会生成同一条线，去重
							if ok && !seen[mask] {
								seen[mask] = true
								out = append(out, mask)
							}
						}
					}
				}
			}
		}
	}
	if len(out) != NumLines {
		panic("qubic: line table size mismatch")
	}
	return out
}

// Lines returns the 76 winning lines. The slice is shared and must not be
// modified.
func Lines() []Bitboard { return lineTable }
