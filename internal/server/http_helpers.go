package server

import (
	"encoding/json"
	"io"
	"net/http"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Unexpected
// errors have already been logged with context where they happened; only the
// generic message leaves the process.
func writeDomainError(w http.ResponseWriter, err error) {
	derr := asDomainError(err)
	if derr == nil {
		writeError(w, http.StatusInternalServerError, "unexpected error")
		return
	}
	status := http.StatusInternalServerError
	switch derr.Kind {
	case kindValidation:
		status = http.StatusBadRequest
	case kindNotFound:
		status = http.StatusNotFound
	case kindUnauthorized:
		status = http.StatusForbidden
	case kindConflict:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]any{
		"error":  derr.Message,
		"kind":   derr.Kind,
		"code":   derr.Code,
		"fields": derr.Fields,
	})
}
