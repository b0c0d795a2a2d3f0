package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/pawdesk/petshop-service/internal/apperrors"
)

type errorBody struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, errorBody{Error: message})
}

// RespondAppError maps the error taxonomy onto HTTP statuses. Raw internal
// errors are never echoed to the caller.
func RespondAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsError(err)
	if !ok {
		RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindInsufficientStock, apperrors.KindConflict:
		status = http.StatusConflict
	case apperrors.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	}

	RespondJSON(w, status, errorBody{
		Error:   appErr.Message,
		Code:    string(appErr.Kind),
		Details: appErr.Details,
	})
}

func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
