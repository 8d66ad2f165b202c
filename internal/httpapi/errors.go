package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tungcyang/bullscows/internal/bnc"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, errCode, msg string) {
	WriteJSON(w, code, ErrorResponse{Code: errCode, Message: msg})
}

// WriteEngineError maps engine errors onto HTTP: bad input is 400, a
// contradiction is 409, anything else is a 500.
func WriteEngineError(w http.ResponseWriter, err error) {
	var ve *bnc.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteError(w, http.StatusBadRequest, "bad_input", ve.Error())
	case errors.Is(err, bnc.ErrContradiction):
		WriteError(w, http.StatusConflict, "contradiction", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
