package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mbtispy/internal/model"
)

var (
	errInvalidTrait = errors.New("trait must be a four-letter code such as INFJ")
	errInvalidVote  = errors.New("voteFor must be an integer player id or \"all_spies\"")
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]string{"error": message}
	if code != "" {
		payload["code"] = code
	}
	json.NewEncoder(w).Encode(payload)
}

// writeGameError maps the stable error codes onto HTTP statuses. Codes are
// surfaced verbatim so callers can branch without string matching.
func writeGameError(w http.ResponseWriter, err error) {
	var ge *model.GameError
	if !errors.As(err, &ge) {
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	status := http.StatusBadRequest
	switch ge.Code {
	case model.CodeNotFound, model.CodeUnknownPlayer:
		status = http.StatusNotFound
	case model.CodeLockTimeout:
		status = http.StatusConflict
	case model.CodeStoreUnavailable:
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, string(ge.Code), ge.Message)
}
