package main

import (
	"fmt"
	"math/rand"
	"os"

	"qubic/internal/engine"
	"qubic/internal/qubic"
)

// debug prints what the engine sees for each encoded position on the
// command line, or for the empty board.
func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{qubic.NewPosition().Encode()}
	}
	e := engine.NewEngine(nil, rand.New(rand.NewSource(1)))
	for _, a := range args {
		pos, err := qubic.DecodePosition(a)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("Position:", pos.Encode())
		fmt.Print(pos.Render())
		fmt.Println("To move:", pos.ToMove(), "Outcome:", pos.Winner())
		fmt.Println("Legal moves:", len(pos.LegalCells()), "Static:", pos.IsStatic())
		for _, pl := range []qubic.Player{qubic.First, qubic.Second} {
			for _, l := range pos.Threats(pl) {
				fmt.Printf("%s threatens %v\n", pl, l.Cells())
			}
		}
		if tr := engine.ThreatSearch(pos, 9); tr.CanWin {
			fmt.Printf("Forced win by threats starting at cell %d (%d nodes)\n", tr.Cell, tr.Nodes)
		}
		if !pos.Winner().Decided() {
			// 走完之后对手无法靠连续威胁取胜的格子
			safe := engine.SafeCells(pos, 5)
			fmt.Printf("Safe moves (%d/%d): %v\n", len(safe), len(pos.LegalCells()), safe)

			res, err := e.Search(pos, engine.SearchConfig{MinDepth: 2, MaxDepth: 4})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			plane, line, index := res.Cell.Coords()
			fmt.Printf("Engine plays %d %d %d (score %.0f, depth %d, %d nodes)\n", plane, line, index, res.Score, res.Depth, e.Nodes())
		}
	}
}
