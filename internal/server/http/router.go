package httpserver

import (
	"net/http"

	"qubic/internal/engine"
)

// NewServer mounts the API handler under /api/.
func NewServer(u *engine.UtilityFunction, search engine.SearchConfig) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", NewHandler(u, search))
	return mux
}
