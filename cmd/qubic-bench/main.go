package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	"qubic/internal/qubic"
	"qubic/internal/train"
)

type PlayerConfig struct {
	Name string
	Cfg  engine.SearchConfig
}

func main() {
	warmup := flag.Int("train", 0, "train this many games before the match")
	totalGames := flag.Int("games", 10, "number of games to play")
	aMin := flag.Int("a-min", 2, "player A min depth")
	aMax := flag.Int("a-max", 4, "player A max depth")
	bMin := flag.Int("b-min", 1, "player B min depth")
	bMax := flag.Int("b-max", 1, "player B max depth")
	workers := flag.Int("workers", 1, "root search workers")
	seed := flag.Int64("seed", 1, "random seed")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Ctrl-C 中止当前搜索并结束对局
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	u := engine.NewUtilityFunction()
	// 先自我对弈训练权重，否则全零权重下只有终局分值起作用
	if *warmup > 0 {
		cfg := train.DefaultConfig()
		cfg.Seed = *seed
		if err := train.New(u, cfg).RunTrials(ctx, *warmup); err != nil {
			log.Fatal().Err(err).Msg("warm-up training")
		}
		fmt.Print(u)
	}
	e := engine.NewEngine(u, rand.New(rand.NewSource(*seed)))

	playerA := PlayerConfig{
		Name: fmt.Sprintf("A (depth %d-%d)", *aMin, *aMax),
		Cfg:  engine.SearchConfig{MinDepth: *aMin, MaxDepth: *aMax, Workers: *workers},
	}
	playerB := PlayerConfig{
		Name: fmt.Sprintf("B (depth %d-%d)", *bMin, *bMax),
		Cfg:  engine.SearchConfig{MinDepth: *bMin, MaxDepth: *bMax, Workers: *workers},
	}

	aWins, bWins, draws := 0, 0, 0
	var nodes int64
	var thinking time.Duration
	for g := 0; g < *totalGames && ctx.Err() == nil; g++ {
		// 交替执先
		x, o := playerA, playerB
		if g%2 == 1 {
			x, o = playerB, playerA
		}
		fmt.Printf("\n=== Game %d: X [%s] vs O [%s] ===\n", g+1, x.Name, o.Name)

		pos := qubic.NewPosition()
		for !pos.Winner().Decided() {
			p := x
			if pos.ToMove() == qubic.Second {
				p = o
			}
			res, err := e.SearchContext(ctx, pos, p.Cfg)
			if err != nil {
				if ctx.Err() != nil {
					log.Warn().Int("game", g+1).Msg("interrupted")
					return
				}
				log.Fatal().Err(err).Msg("search")
			}
			nodes += res.Nodes
			thinking += res.TimeUsed
			pos = res.Best
		}
		fmt.Print(pos.Render())

		switch winner := pos.Winner().Winner(); {
		case winner == qubic.NoPlayer:
			draws++
		case (winner == qubic.First) == (g%2 == 0):
			aWins++
		default:
			bWins++
		}
	}

	fmt.Printf("\n=== Final: %s %d, %s %d, draws %d ===\n", playerA.Name, aWins, playerB.Name, bWins, draws)
	if thinking > 0 {
		fmt.Printf("Nodes: %d, Time: %v, NPS: %d\n", nodes, thinking, int64(float64(nodes)/thinking.Seconds()))
	}
}
