package api

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

func renderJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func renderError(w http.ResponseWriter, r *http.Request, code int, err error) {
	renderJSON(w, code, errorResponse{
		Status:  code,
		Error:   http.StatusText(code),
		Message: err.Error(),
		Path:    r.URL.Path,
	})
}
