package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/campus-placement/internal/accounts"
	"github.com/jonathan/campus-placement/internal/apperr"
)

// errInvalidBody is returned when a request body is not the expected JSON.
var errInvalidBody = apperr.Validation("Invalid JSON body")

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch apperr.From(err).Kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Error string      `json:"error"`
	Kind  apperr.Kind `json:"kind"`
}

// newErrorBody classifies err. Infrastructure causes stay in the logs.
func newErrorBody(err error) errorBody {
	e := apperr.From(err)
	return errorBody{Error: e.Message, Kind: e.Kind}
}
