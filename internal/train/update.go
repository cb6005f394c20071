package train

import (
	"qubic/internal/engine"
	"qubic/internal/qubic"
)

// Shares returns, per square type, the fraction of pl's stones standing on
// that type. A player with no stones has all-zero shares.
func Shares(p qubic.Position, pl qubic.Player) [qubic.NumSquareTypes]float64 {
	var out [qubic.NumSquareTypes]float64
	stones := p.Stones(pl)
	total := stones.Count()
	if total == 0 {
		return out
	}
	for _, t := range qubic.AllSquareTypes() {
		out[t] = float64((stones & qubic.SquareMask(t)).Count()) / float64(total)
	}
	return out
}

// Update credits the winner's square types in a finished game: each weight
// moves towards winnerShare-loserShare by the learning rate. Draws and
// unfinished games leave u untouched.
func Update(u *engine.UtilityFunction, terminal qubic.Position, learningRate float64) {
	outcome := terminal.Winner()
	if outcome == qubic.Undecided || outcome == qubic.Draw {
		return
	}
	winner := outcome.Winner()
	won := Shares(terminal, winner)
	lost := Shares(terminal, winner.Opponent())
	for _, t := range qubic.AllSquareTypes() {
		net := won[t] - lost[t]
		u.SetWeight(t, (1-learningRate)*u.Weight(t)+learningRate*net)
	}
}
