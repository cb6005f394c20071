package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	"qubic/internal/store"
	"qubic/internal/train"
)

func main() {
	seed := flag.Int64("seed", 0, "random seed (0 = clock)")
	configPath := flag.String("config", "", "JSON file overriding the training config")
	archiveDir := flag.String("archive", "", "write every game to a parquet file in this directory")
	useTUI := flag.Bool("tui", false, "show a live progress view")
	play := flag.Bool("play", false, "play against the trained weights afterwards")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: qubic-train [flags] n1 n2 n3\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	setupLogging(*verbose && !*useTUI)

	cfg := train.DefaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	in := bufio.NewScanner(os.Stdin)
	in.Split(bufio.ScanWords)
	n1, n2, n3, err := trialCounts(flag.Args(), in)
	if err != nil {
		log.Fatal().Err(err).Msg("trial counts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr := train.New(engine.NewUtilityFunction(), cfg)

	var archive *store.BatchWriter
	if *archiveDir != "" {
		archive, err = store.NewBatchWriter(*archiveDir)
		if err != nil {
			log.Fatal().Err(err).Msg("open archive")
		}
		log.Info().Str("path", archive.OutPath()).Msg("archiving games")
	}
	onTrial := func(r train.TrialResult) {
		if archive == nil {
			return
		}
		if err := archive.Write(store.EpisodeFromTrial(r)); err != nil {
			log.Error().Err(err).Int("trial", r.Trial).Msg("archive write")
		}
	}

	if *useTUI {
		err = runWithTUI(ctx, tr, n1, n2, n3, onTrial)
	} else {
		tr.OnTrial = onTrial
		tr.OnCheckpoint = func(trial int, u *engine.UtilityFunction) {
			fmt.Printf("After %d trials:\n%s", trial, u)
		}
		err = tr.RunCheckpointed(ctx, n1, n2, n3)
	}

	if archive != nil {
		path, rows, ferr := archive.Finalize()
		if ferr != nil {
			log.Error().Err(ferr).Msg("archive finalize")
		} else if rows > 0 {
			log.Info().Str("path", path).Int("games", rows).Msg("archive written")
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("training stopped")
	}

	if *play {
		playLoop(in, tr.Utility(), engine.DefaultSearchConfig())
	}
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func loadConfig(path string, cfg *train.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, cfg)
}

// trialCounts takes n1 n2 n3 from the arguments, or prompts for them.
func trialCounts(args []string, in *bufio.Scanner) (int, int, int, error) {
	if len(args) == 0 {
		fmt.Println("Number of trials (input: n1 n2 n3):")
		for len(args) < 3 && in.Scan() {
			args = append(args, in.Text())
		}
	}
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("want three trial counts, got %d", len(args))
	}
	var n [3]int
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil || v < 0 {
			return 0, 0, 0, fmt.Errorf("bad trial count %q", a)
		}
		n[i] = v
	}
	return n[0], n[1], n[2], nil
}
