package train

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"qubic/internal/engine"
	"qubic/internal/qubic"
)

func TestSchedule(t *testing.T) {
	cfg := DefaultConfig()
	tr := New(nil, cfg)
	if lr := tr.LearningRate(4); lr != 0.25 {
		t.Errorf("lr(4): got %v", lr)
	}
	if e := tr.Exploitation(3, 4); e != 0.25 {
		t.Errorf("exploitation(3,4): got %v", e)
	}

	cfg.LearningRateDecay = 0.5
	cfg.ExploitationOffset = 0
	cfg.ExploitationSlope = 2
	tr = New(nil, cfg)
	if lr := tr.LearningRate(4); lr != 0.5 {
		t.Errorf("lr(4) with decay 0.5: got %v", lr)
	}
	if e := tr.Exploitation(1, 4); e != 0.5 {
		t.Errorf("exploitation(1,4) with slope 2: got %v", e)
	}
}

func TestRunTrialsUpdatesOncePerGame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 17
	tr := New(nil, cfg)

	var results []TrialResult
	tr.OnTrial = func(r TrialResult) { results = append(results, r) }
	if err := tr.RunTrials(context.Background(), 12); err != nil {
		t.Fatal(err)
	}
	if len(results) != 12 {
		t.Fatalf("want 12 trials, got %d", len(results))
	}

	// Replaying every game through Update once must reproduce the weights.
	want := engine.NewUtilityFunction()
	for i, r := range results {
		if r.Trial != i+1 || r.Total != 12 {
			t.Fatalf("trial numbering: %+v", r)
		}
		terminal := replay(t, r.Moves...)
		if terminal.Winner() != r.Outcome || !r.Outcome.Decided() {
			t.Fatalf("trial %d: replay gives %v, result says %v", r.Trial, terminal.Winner(), r.Outcome)
		}
		if r.LearningRate != 1/float64(r.Trial) {
			t.Fatalf("trial %d: lr %v", r.Trial, r.LearningRate)
		}
		Update(want, terminal, r.LearningRate)
		for st, w := range want.Weights() {
			if math.Abs(w-r.Weights[st]) > 1e-12 {
				t.Fatalf("trial %d %v: got %v want %v", r.Trial, qubic.SquareType(st), r.Weights[st], w)
			}
		}
	}
	if tr.Utility().Weights() != results[11].Weights {
		t.Fatalf("final weights differ from last trial")
	}
}

func TestRunCheckpointed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	tr := New(nil, cfg)
	var got []int
	tr.OnCheckpoint = func(trial int, u *engine.UtilityFunction) {
		got = append(got, trial)
		if u == tr.Utility() {
			t.Errorf("checkpoint should hand out a copy")
		}
	}
	if err := tr.RunCheckpointed(context.Background(), 2, 5, 8); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []int{2, 5, 8}) {
		t.Fatalf("checkpoints: got %v", got)
	}
}

func TestRunTrialsCancelled(t *testing.T) {
	tr := New(nil, DefaultConfig())
	calls := 0
	tr.OnTrial = func(TrialResult) { calls++ }
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tr.RunTrials(ctx, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("played %d games after cancel", calls)
	}
	if err := tr.RunTrials(context.Background(), -1); !errors.Is(err, qubic.ErrInvalidArgument) {
		t.Fatalf("negative count: got %v", err)
	}
}

func TestPlayTrialRejectsBadIndex(t *testing.T) {
	u := engine.NewUtilityFunction()
	tr := New(u, DefaultConfig())
	for _, tc := range []struct{ trial, total int }{
		{0, 10},
		{-3, 10},
		{11, 10},
	} {
		if _, err := tr.PlayTrial(tc.trial, tc.total); !errors.Is(err, qubic.ErrInvalidArgument) {
			t.Errorf("trial %d of %d: got %v", tc.trial, tc.total, err)
		}
	}
	for _, typ := range qubic.AllSquareTypes() {
		if w := u.Weight(typ); math.IsNaN(w) || w != 0 {
			t.Fatalf("rejected trials touched %s: %v", typ, w)
		}
	}
	if _, err := tr.PlayTrial(1, 1); err != nil {
		t.Fatal(err)
	}
}

func TestTrainingReproducible(t *testing.T) {
	run := func() [qubic.NumSquareTypes]float64 {
		cfg := DefaultConfig()
		cfg.Seed = 42
		tr := New(nil, cfg)
		if err := tr.RunTrials(context.Background(), 20); err != nil {
			t.Fatal(err)
		}
		return tr.Utility().Weights()
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("same seed diverged: %v vs %v", a, b)
	}
}
