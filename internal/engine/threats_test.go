package engine

import (
	"math/rand"
	"testing"
)

func TestThreatSearch(t *testing.T) {
	t.Run("ImmediateWin", func(t *testing.T) {
		p := play(t, 0, 16, 1, 17, 2, 21)
		res := ThreatSearch(p, 4)
		if !res.CanWin || res.Cell != 3 {
			t.Fatalf("want win on 3, got %+v", res)
		}
	})

	t.Run("DoubleThreat", func(t *testing.T) {
		// X holds 1,2 on row 0 and 4,8 on column 0; taking 0 opens both.
		p := play(t, 1, 63, 2, 62, 4, 47, 8, 21)
		res := ThreatSearch(p, 4)
		if !res.CanWin || res.Cell != 0 {
			t.Fatalf("want fork on 0, got %+v", res)
		}
		e := NewEngine(nil, rand.New(rand.NewSource(1)))
		sr, err := e.Search(p, SearchConfig{MaxDepth: 3})
		if err != nil {
			t.Fatal(err)
		}
		if sr.Score < WinBase {
			t.Fatalf("alpha-beta disagrees: score %v", sr.Score)
		}
	})

	t.Run("QuietOpening", func(t *testing.T) {
		p := play(t, 0, 21)
		if res := ThreatSearch(p, 6); res.CanWin {
			t.Fatalf("no forced win expected, got %+v", res)
		}
	})

	t.Run("Finished", func(t *testing.T) {
		p := play(t, 0, 16, 1, 17, 2, 18, 3)
		if res := ThreatSearch(p, 4); res.CanWin || res.Cell != -1 {
			t.Fatalf("finished game: %+v", res)
		}
	})
}

func TestSafeCells(t *testing.T) {
	// O to move while X can fork on 0: O has to take 0 or lose.
	p := play(t, 1, 63, 2, 62, 4, 47, 8)
	safe := SafeCells(p, 4)
	found := false
	for _, c := range safe {
		if c == 0 {
			found = true
		}
	}
	if !found || len(safe) == len(p.LegalCells()) {
		t.Fatalf("expected the fork cell among a filtered list, got %v", safe)
	}
	t.Logf("safe replies: %d/%d", len(safe), len(p.LegalCells()))

	quiet := play(t, 0)
	if got := SafeCells(quiet, 4); len(got) != len(quiet.LegalCells()) {
		t.Fatalf("opening should not filter moves: %d", len(got))
	}
}
