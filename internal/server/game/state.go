package game

import (
	"time"

	"qubic/internal/qubic"
)

type GameState struct {
	ID        string
	Pos       qubic.Position // 当前局面
	Prev      qubic.Position // 最近一次人类落子之前的局面，用于悔棋
	CanUndo   bool           // Prev 有效且尚未被撤销
	CreatedAt time.Time
	UpdatedAt time.Time
}
