package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qubic/internal/engine"
	"qubic/internal/qubic"
)

func post(t *testing.T, srv http.Handler, path string, body any, out any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return rec.Code
}

func TestPlayFlow(t *testing.T) {
	srv := NewServer(nil, engine.SearchConfig{MaxDepth: 1})

	var st StateResponse
	if code := post(t, srv, "/api/new_game", struct{}{}, &st); code != http.StatusOK {
		t.Fatalf("new_game: %d", code)
	}
	if st.ToMove != "X" || st.Status != "ongoing" || len(st.LegalCells) != 64 || len(st.SafeCells) != 64 {
		t.Fatalf("unexpected new game: %+v", st)
	}
	id := st.GameID

	// X fills plane 0 line 0 while O plays along plane 1 line 0.
	moves := [][3]int{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1}, {0, 0, 2}, {1, 0, 2}, {0, 0, 3}}
	for _, m := range moves {
		code := post(t, srv, "/api/play", PlayRequest{GameID: id, Plane: m[0], Line: m[1], Index: m[2]}, &st)
		if code != http.StatusOK {
			t.Fatalf("play %v: %d", m, code)
		}
	}
	if st.Status != "first_won" || st.ToMove != "" || len(st.LegalCells) != 0 || len(st.SafeCells) != 0 || st.ForcedWin != nil {
		t.Fatalf("expected finished game, got %+v", st)
	}

	if code := post(t, srv, "/api/play", PlayRequest{GameID: id, Plane: 2, Line: 2, Index: 2}, nil); code != http.StatusConflict {
		t.Fatalf("move after win: want 409, got %d", code)
	}
	if code := post(t, srv, "/api/ai_move", AiMoveRequest{GameID: id}, nil); code != http.StatusConflict {
		t.Fatalf("ai move after win: want 409, got %d", code)
	}

	if code := post(t, srv, "/api/undo", GameRequest{GameID: id}, &st); code != http.StatusOK || st.Status != "ongoing" {
		t.Fatalf("undo: %d %+v", code, st)
	}
	// Back before the winning move, X has an open three on cell 3.
	if st.ForcedWin == nil || st.ForcedWin.Cell != 3 {
		t.Fatalf("expected forced win hint on 3, got %+v", st.ForcedWin)
	}
}

func TestAiMove(t *testing.T) {
	srv := NewServer(engine.NewUtilityFunction(), engine.SearchConfig{MaxDepth: 2})
	var st StateResponse
	post(t, srv, "/api/new_game", struct{}{}, &st)

	var res AiMoveResponse
	if code := post(t, srv, "/api/ai_move", AiMoveRequest{GameID: st.GameID, MaxDepth: 1}, &res); code != http.StatusOK {
		t.Fatalf("ai_move: %d", code)
	}
	if res.ToMove != "O" || len(res.LegalCells) != 63 || res.Depth != 1 {
		t.Fatalf("unexpected ai response: %+v", res)
	}
	var again StateResponse
	post(t, srv, "/api/state", GameRequest{GameID: st.GameID}, &again)
	if again.Position != res.Position {
		t.Fatalf("state %q does not match ai move %q", again.Position, res.Position)
	}
}

func TestUndoAfterAiMove(t *testing.T) {
	srv := NewServer(nil, engine.SearchConfig{MaxDepth: 1})
	var st StateResponse
	post(t, srv, "/api/new_game", struct{}{}, &st)
	id := st.GameID

	if code := post(t, srv, "/api/play", PlayRequest{GameID: id, Plane: 1, Line: 1, Index: 1}, &st); code != http.StatusOK {
		t.Fatalf("play: %d", code)
	}
	var res AiMoveResponse
	if code := post(t, srv, "/api/ai_move", AiMoveRequest{GameID: id}, &res); code != http.StatusOK {
		t.Fatalf("ai_move: %d", code)
	}
	if len(res.LegalCells) != 62 {
		t.Fatalf("expected two stones on the board, got %d legal cells", len(res.LegalCells))
	}

	// Undo takes back the human move together with the engine reply.
	if code := post(t, srv, "/api/undo", GameRequest{GameID: id}, &st); code != http.StatusOK {
		t.Fatalf("undo: %d", code)
	}
	if st.Position != qubic.NewPosition().Encode() || st.ToMove != "X" {
		t.Fatalf("expected the empty board, got %q to move %q", st.Position, st.ToMove)
	}
	if code := post(t, srv, "/api/undo", GameRequest{GameID: id}, nil); code != http.StatusConflict {
		t.Fatalf("second undo: want 409, got %d", code)
	}
}

func TestStateListsSafeCells(t *testing.T) {
	srv := NewServer(nil, engine.SearchConfig{MaxDepth: 1})
	var st StateResponse
	post(t, srv, "/api/new_game", struct{}{}, &st)

	// X builds 1,2 on row 0 and 4,8 on column 0, so 0 is a fork for X.
	moves := []int{1, 63, 2, 62, 4, 47, 8}
	for _, c := range moves {
		plane, line, index := qubic.Cell(c).Coords()
		req := PlayRequest{GameID: st.GameID, Plane: plane, Line: line, Index: index}
		if code := post(t, srv, "/api/play", req, &st); code != http.StatusOK {
			t.Fatalf("play %d: %d", c, code)
		}
	}
	if st.ToMove != "O" {
		t.Fatalf("expected O to move, got %q", st.ToMove)
	}
	if len(st.SafeCells) == 0 || len(st.SafeCells) >= len(st.LegalCells) {
		t.Fatalf("expected a filtered list, got %d of %d", len(st.SafeCells), len(st.LegalCells))
	}
	found := false
	for _, c := range st.SafeCells {
		if c.Cell == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("blocking the fork should be safe: %+v", st.SafeCells)
	}
}

func TestAiMoveCancelled(t *testing.T) {
	srv := NewServer(nil, engine.SearchConfig{MaxDepth: 3})
	var st StateResponse
	post(t, srv, "/api/new_game", struct{}{}, &st)

	buf, _ := json.Marshal(AiMoveRequest{GameID: st.GameID})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/ai_move", bytes.NewReader(buf)).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", rec.Code)
	}

	// The game is left untouched.
	var again StateResponse
	post(t, srv, "/api/state", GameRequest{GameID: st.GameID}, &again)
	if again.Position != st.Position {
		t.Fatalf("cancelled search moved: %q", again.Position)
	}
}

func TestErrorCodes(t *testing.T) {
	srv := NewServer(nil, engine.DefaultSearchConfig())
	var st StateResponse
	post(t, srv, "/api/new_game", struct{}{}, &st)

	cases := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown game", "/api/state", GameRequest{GameID: "nope"}, http.StatusNotFound},
		{"off board", "/api/play", PlayRequest{GameID: st.GameID, Plane: 4}, http.StatusBadRequest},
		{"nothing to undo", "/api/undo", GameRequest{GameID: st.GameID}, http.StatusConflict},
		{"bad json", "/api/play", "not an object", http.StatusBadRequest},
		{"unknown route", "/api/resign", GameRequest{GameID: st.GameID}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code := post(t, srv, tc.path, tc.body, nil); code != tc.want {
				t.Fatalf("want %d, got %d", tc.want, code)
			}
		})
	}

	post(t, srv, "/api/play", PlayRequest{GameID: st.GameID, Plane: 1, Line: 1, Index: 1}, nil)
	if code := post(t, srv, "/api/play", PlayRequest{GameID: st.GameID, Plane: 1, Line: 1, Index: 1}, nil); code != http.StatusBadRequest {
		t.Fatalf("occupied cell: want 400, got %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET: want 405, got %d", rec.Code)
	}
}
