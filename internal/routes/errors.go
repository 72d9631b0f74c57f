package routes

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/hlog"
	"gitlab.com/ranfdev/unimarket/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrUnauthenticated = errors.New("missing or invalid bearer token")

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to its status and code. Order matters: some errors
// wrap others (a suspended actor is also a permission error).
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, models.ErrSelfAction):
		return http.StatusForbidden, "self_action"
	case errors.Is(err, models.ErrActorSuspended):
		return http.StatusForbidden, "account_suspended"
	case errors.Is(err, models.ErrPermDenied):
		return http.StatusForbidden, "perm_denied"
	case errors.Is(err, models.ErrInvalidFormat):
		return http.StatusBadRequest, "invalid_format"
	case errors.Is(err, models.ErrDuplicateReport):
		return http.StatusConflict, "duplicate_report"
	case errors.Is(err, models.ErrAlreadyResolved):
		return http.StatusConflict, "already_resolved"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal"
}

func (routes *Routes) HandleErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	log := hlog.FromRequest(r)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
		msg = "Internal server error"
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return models.ErrValidation{Field: "body", Problem: "malformed JSON"}
	}
	return nil
}
