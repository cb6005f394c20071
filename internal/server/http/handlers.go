package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"qubic/internal/engine"
	"qubic/internal/qubic"
	"qubic/internal/server/game"
)

// Handler serves /api/*. Each AI request runs on its own Engine; the
// utility function is only read.
type Handler struct {
	games   *game.Manager           // 内存中的对局
	utility *engine.UtilityFunction // 所有请求共享，只读
	search  engine.SearchConfig     // 默认搜索参数，请求可以覆盖
}

func NewHandler(u *engine.UtilityFunction, search engine.SearchConfig) *Handler {
	if u == nil {
		u = engine.NewUtilityFunction()
	}
	return &Handler{games: game.NewManager(), utility: u, search: search}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/new_game":
		h.handleNewGame(w, r)
	case "/api/play":
		h.handlePlay(w, r)
	case "/api/ai_move":
		h.handleAiMove(w, r)
	case "/api/state":
		h.handleState(w, r)
	case "/api/undo":
		h.handleUndo(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	g := h.games.NewGame()
	log.Debug().Str("game", g.ID).Msg("new game")
	writeJSON(w, http.StatusOK, stateToDTO(g))
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}
	next, err := g.Pos.Move(req.Plane, req.Line, req.Index)
	if err != nil {
		writeError(w, err)
		return
	}
	// 人类落子：记下落子前的局面，供悔棋
	g, err = h.games.Play(g.ID, g.Pos, next)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(g))
}

func (h *Handler) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}

	// 请求里的深度优先于服务端默认值
	cfg := h.search
	if req.MaxDepth > 0 {
		cfg.MaxDepth = req.MaxDepth
		cfg.MinDepth = req.MinDepth
	}
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	// 客户端断开时搜索随之取消
	res, err := engine.NewEngine(h.utility, nil).SearchContext(r.Context(), g.Pos, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	// 引擎落子不覆盖悔棋点
	g, err = h.games.Update(g.ID, g.Pos, res.Best)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Debug().
		Str("game", g.ID).
		Int("cell", int(res.Cell)).
		Float64("score", res.Score).
		Int64("nodes", res.Nodes).
		Dur("took", res.TimeUsed).
		Msg("ai move")

	writeJSON(w, http.StatusOK, AiMoveResponse{
		StateResponse: stateToDTO(g),
		Move:          cellToDTO(res.Cell),
		Score:         res.Score,
		Depth:         res.Depth,
		Nodes:         res.Nodes,
		TimeMs:        res.TimeUsed.Milliseconds(),
	})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := h.games.Get(req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(g))
}

func (h *Handler) handleUndo(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := h.games.Undo(req.GameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateToDTO(g))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, qubic.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, qubic.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writeJSON")
	}
}
