package reply

import (
	"net/http"
)

// Register mounts the reply endpoint on mux.
func Register(mux *http.ServeMux, svc Generator) {
	mux.Handle("POST /process-html", ProcessHandler{Svc: svc})
}
