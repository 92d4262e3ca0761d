package http

import (
	"net/http"
	"strconv"

	"syllabus-service/internal/app"
)

// NewRouter assembles the HTTP surface: auth endpoints, the websocket
// session endpoint, the viewport-based entry redirect and a health check.
func NewRouter(ws *WSHandler, auth *AuthHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	mux.HandleFunc("/api/signup", auth.SignUp)
	mux.HandleFunc("/api/signin", auth.SignIn)
	mux.HandleFunc("/", entryRedirect)
	return mux
}

// entryRedirect routes the landing request to the presentation matching the
// reported viewport width. The choice affects presentation only.
func entryRedirect(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	if app.PresentationFor(width) == app.PresentationMobile {
		http.Redirect(w, r, "/menu", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/desktop", http.StatusFound)
}
