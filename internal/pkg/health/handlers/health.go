package handlers

import (
	"net/http"
)

// HandlePing answers liveness probes.
func HandlePing(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, "pong\n")
}

// HandleHealth answers readiness probes. Store failures show up in /metrics.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, r, "ok\n")
}

func writeText(w http.ResponseWriter, r *http.Request, body string) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
