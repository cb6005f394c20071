package main

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	"qubic/internal/qubic"
)

// playLoop keeps offering games until the answer is not two booleans.
func playLoop(in *bufio.Scanner, u *engine.UtilityFunction, cfg engine.SearchConfig) {
	e := engine.NewEngine(u, nil)
	for {
		fmt.Println("Play game (input: x_uses_ai o_uses_ai) or exit (any other input):")
		xAI, ok1 := nextBool(in)
		oAI, ok2 := nextBool(in)
		if !ok1 || !ok2 {
			return
		}
		playGame(in, e, cfg, xAI, oAI)
	}
}

func playGame(in *bufio.Scanner, e *engine.Engine, cfg engine.SearchConfig, xAI, oAI bool) {
	pos := qubic.NewPosition()
	prev := pos
	fmt.Print(pos.Render())
	for !pos.Winner().Decided() {
		ai := oAI
		if pos.ToMove() == qubic.First {
			ai = xAI
		}
		if ai {
			next, err := e.BestMoveRange(pos, cfg.MinDepth, cfg.MaxDepth)
			if err != nil {
				log.Error().Err(err).Msg("engine move")
				return
			}
			pos = next
		} else {
			fmt.Println("Make move (input: plane line index) or undo (any other input):")
			coords, ok, eof := nextInts(in, 3)
			if eof {
				return
			}
			if !ok {
				fmt.Println("undoing...")
				pos = prev
			} else {
				next, err := pos.Move(coords[0], coords[1], coords[2])
				if err != nil {
					fmt.Println("Illegal Move. Try again")
					continue
				}
				prev, pos = pos, next
			}
		}
		fmt.Print(pos.Render())
	}
}

func nextBool(in *bufio.Scanner) (bool, bool) {
	if !in.Scan() {
		return false, false
	}
	v, err := strconv.ParseBool(in.Text())
	return v, err == nil
}

// nextInts reads n integers; it stops at the first token that is not one.
func nextInts(in *bufio.Scanner, n int) (vals []int, ok, eof bool) {
	for len(vals) < n {
		if !in.Scan() {
			return nil, false, true
		}
		v, err := strconv.Atoi(in.Text())
		if err != nil {
			return nil, false, false
		}
		vals = append(vals, v)
	}
	return vals, true, false
}
