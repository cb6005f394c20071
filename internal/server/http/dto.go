package httpserver

import (
	"github.com/samber/lo"

	"qubic/internal/engine"
	"qubic/internal/qubic"
	"qubic/internal/server/game"
)

type GameRequest struct {
	GameID string `json:"game_id"`
}

type PlayRequest struct {
	GameID string `json:"game_id"`
	Plane  int    `json:"plane"` // 层 0..3
	Line   int    `json:"line"`  // 行 0..3
	Index  int    `json:"index"` // 列 0..3
}

// AiMoveRequest asks the engine to play for the side to move. Zero depths
// fall back to the handler's defaults.
type AiMoveRequest struct {
	GameID   string `json:"game_id"`
	MinDepth int    `json:"min_depth"`
	MaxDepth int    `json:"max_depth"`
	Workers  int    `json:"workers"`
}

type CellDTO struct {
	Cell  int `json:"cell"`
	Plane int `json:"plane"`
	Line  int `json:"line"`
	Index int `json:"index"`
}

// StateResponse is returned by every endpoint.
type StateResponse struct {
	GameID     string    `json:"game_id"`
	Position   string    `json:"position"`
	Board      string    `json:"board"`
	ToMove     string    `json:"to_move"` // "X", "O" or "" once decided
	Status     string    `json:"status"`  // ongoing / first_won / second_won / draw
	LegalCells []CellDTO `json:"legal_cells"`
	// SafeCells are the legal cells after which the opponent has no forced
	// threat win within safeDepth plies.
	SafeCells []CellDTO `json:"safe_cells"`
	// ForcedWin is set when the side to move wins by continuous threats.
	ForcedWin *CellDTO `json:"forced_win,omitempty"`
}

type AiMoveResponse struct {
	StateResponse
	Move   CellDTO `json:"move"`
	Score  float64 `json:"score"`
	Depth  int     `json:"depth"`
	Nodes  int64   `json:"nodes"`
	TimeMs int64   `json:"time_ms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func cellToDTO(c qubic.Cell) CellDTO {
	plane, line, index := c.Coords()
	return CellDTO{Cell: int(c), Plane: plane, Line: line, Index: index}
}

// hintDepth bounds the threat search run for every state response.
const hintDepth = 7

// safeDepth bounds the per-move threat search behind SafeCells.
const safeDepth = 4

func cellsToDTO(cells []qubic.Cell) []CellDTO {
	return lo.Map(cells, func(c qubic.Cell, _ int) CellDTO {
		return cellToDTO(c)
	})
}

func stateToDTO(g game.GameState) StateResponse {
	outcome := g.Pos.Winner()
	var forced *CellDTO
	if res := engine.ThreatSearch(g.Pos, hintDepth); res.CanWin {
		c := cellToDTO(res.Cell)
		forced = &c
	}
	// 终局后没有可走的格子，提示也留空
	toMove := ""
	safe := []CellDTO{}
	if !outcome.Decided() {
		toMove = g.Pos.ToMove().String()
		safe = cellsToDTO(engine.SafeCells(g.Pos, safeDepth))
	}
	return StateResponse{
		GameID:     g.ID,
		Position:   g.Pos.Encode(),
		Board:      g.Pos.Render(),
		ToMove:     toMove,
		Status:     outcome.String(),
		LegalCells: cellsToDTO(g.Pos.LegalCells()),
		SafeCells:  safe,
		ForcedWin:  forced,
	}
}
