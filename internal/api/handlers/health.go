package handlers

import (
	"net/http"

	"github.com/gatherhub/server/internal/api/respond"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	respond.Write(w, respond.OK(map[string]string{"status": "ok"}))
}

func Readyz(w http.ResponseWriter, r *http.Request) {
	respond.Write(w, respond.OK(map[string]string{"status": "ready"}))
}
