package server

import (
	"net/http"
	"strings"
)

// hostKeyFromRequest reads the host key from a Bearer token, or from the key
// query parameter for clients that cannot set headers (EventSource,
// WebSocket).
func hostKeyFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found && token != "" {
		return token
	}
	return r.URL.Query().Get("key")
}
