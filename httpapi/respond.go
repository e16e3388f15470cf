package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	authcore "github.com/polylab/authcore"
)

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// writeError maps engine errors onto status codes and stable detail strings.
// Backend faults deliberately collapse into an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	status := authcore.HTTPStatus(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error"
	}
	writeJSON(w, status, errorResponse{Detail: detail, Code: authcore.Kind(err)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "malformed request body"})
		return false
	}
	return true
}

func isUnavailable(err error) bool {
	return errors.Is(err, authcore.ErrStoreUnavailable)
}
