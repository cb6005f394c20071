package game

import (
	"errors"
	"testing"

	"qubic/internal/qubic"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	g := m.NewGame()
	if g.ID == "" || g.Pos != qubic.NewPosition() || m.Len() != 1 {
		t.Fatalf("unexpected new game: %+v", g)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	next, err := g.Pos.Move(1, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Play(g.ID, g.Pos, next); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Play(g.ID, g.Pos, next); !errors.Is(err, qubic.ErrInvalidState) {
		t.Fatalf("stale update: want ErrInvalidState, got %v", err)
	}
	got, _ := m.Get(g.ID)
	if got.Pos != next {
		t.Fatalf("position not stored")
	}

	undone, err := m.Undo(g.ID)
	if err != nil || undone.Pos != g.Pos {
		t.Fatalf("undo: %v %s", err, undone.Pos)
	}
	if _, err := m.Undo(g.ID); !errors.Is(err, qubic.ErrInvalidState) {
		t.Fatalf("second undo: want ErrInvalidState, got %v", err)
	}
}

func TestUndoSkipsEngineReplies(t *testing.T) {
	m := NewManager()
	g := m.NewGame()

	// 引擎先走一步不产生悔棋点
	engineFirst, _ := g.Pos.Move(0, 0, 0)
	if _, err := m.Update(g.ID, g.Pos, engineFirst); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Undo(g.ID); !errors.Is(err, qubic.ErrInvalidState) {
		t.Fatalf("undo after engine move only: want ErrInvalidState, got %v", err)
	}

	human, _ := engineFirst.Move(1, 1, 1)
	if _, err := m.Play(g.ID, engineFirst, human); err != nil {
		t.Fatal(err)
	}
	reply, _ := human.Move(2, 2, 2)
	if _, err := m.Update(g.ID, human, reply); err != nil {
		t.Fatal(err)
	}

	undone, err := m.Undo(g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if undone.Pos != engineFirst {
		t.Fatalf("undo should return to before the human move, got %s", undone.Pos)
	}
}
