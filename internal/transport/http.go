package transport

import (
	"net/http"
)

// NewServer routes the MCP endpoint and a health check. When authMiddleware
// is set it guards the MCP endpoint only.
func NewServer(mcpHandler http.Handler, authMiddleware func(http.Handler) http.Handler) *http.ServeMux {
	if authMiddleware != nil {
		mcpHandler = authMiddleware(mcpHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/mcp/", mcpHandler)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
