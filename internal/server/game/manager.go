package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"qubic/internal/qubic"
)

var ErrNotFound = errors.New("game not found")

// Manager keeps every game in memory.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*GameState // 对局 ID -> 状态，不做过期清理
}

func NewManager() *Manager {
	return &Manager{games: make(map[string]*GameState)}
}

func (m *Manager) NewGame() GameState {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	g := &GameState{
		ID:        uuid.NewString(),
		Pos:       qubic.NewPosition(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.games[g.ID] = g
	return *g
}

// Get returns a snapshot; positions are values so callers cannot race the
// stored game.
func (m *Manager) Get(id string) (GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return GameState{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return *g, nil
}

// Update stores an engine move. It replaces the position only if the game is
// still at expected, so two concurrent moves on the same game cannot both land.
func (m *Manager) Update(id string, expected, pos qubic.Position) (GameState, error) {
	return m.set(id, expected, pos, false)
}

// Play stores a human move and remembers the position before it for Undo.
func (m *Manager) Play(id string, expected, pos qubic.Position) (GameState, error) {
	return m.set(id, expected, pos, true)
}

func (m *Manager) set(id string, expected, pos qubic.Position, human bool) (GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return GameState{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	// 乐观锁：读到的局面已经过期就拒绝
	if g.Pos != expected {
		return GameState{}, errors.Wrap(qubic.ErrInvalidState, "game changed concurrently")
	}
	if human {
		g.Prev = g.Pos
		g.CanUndo = true
	}
	g.Pos = pos
	g.UpdatedAt = time.Now()
	return *g, nil
}

// Undo goes back to the position before the last human move, dropping any
// engine replies made since. Only one step is kept.
func (m *Manager) Undo(id string) (GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return GameState{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	if !g.CanUndo {
		return GameState{}, errors.Wrap(qubic.ErrInvalidState, "nothing to undo")
	}
	g.Pos = g.Prev
	g.CanUndo = false
	g.UpdatedAt = time.Now()
	return *g, nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
