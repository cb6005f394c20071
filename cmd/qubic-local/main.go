package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	httpserver "qubic/internal/server/http"
	"qubic/internal/train"
)

func main() {
	addr := flag.String("addr", ":2888", "listen address")
	warmup := flag.Int("train", 0, "train this many games before serving")
	seed := flag.Int64("seed", 0, "training seed (0 = clock)")
	minDepth := flag.Int("min-depth", 2, "search horizon for quiet positions")
	maxDepth := flag.Int("max-depth", 4, "hard search horizon")
	workers := flag.Int("workers", 1, "root search workers")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	u := engine.NewUtilityFunction()
	// 可选：先训练若干局再开服
	if *warmup > 0 {
		cfg := train.DefaultConfig()
		cfg.Seed = *seed
		tr := train.New(u, cfg)
		if err := tr.RunTrials(context.Background(), *warmup); err != nil {
			log.Fatal().Err(err).Msg("warm-up training")
		}
		log.Info().Int("games", *warmup).Msg("warm-up done")
	}
	log.Info().Interface("weights", u).Msg("evaluator")

	// 每个请求的深度和 worker 数可以覆盖这里的默认值
	srv := httpserver.NewServer(u, engine.SearchConfig{
		MinDepth: *minDepth,
		MaxDepth: *maxDepth,
		Workers:  *workers,
	})
	log.Info().Str("addr", *addr).Msg("listening")
	if err := http.ListenAndServe(*addr, srv); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
