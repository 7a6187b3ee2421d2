// Package response turns tracker errors into the JSON envelope the
// scoreboard client renders in its banner.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/bongo-stats-service/internal/ledger"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/service"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

type errorRule struct {
	target  error
	status  int
	code    string
	message string
	// passthrough keeps err.Error() as the message, for ledger errors that
	// already name the offending stat or player.
	passthrough bool
}

// Checked in order; the first rule whose target matches wins.
var errorRules = []errorRule{
	{target: ledger.ErrUnknownStat, status: http.StatusBadRequest, code: "invalid_input", passthrough: true},
	{target: ledger.ErrNoPlayer, status: http.StatusBadRequest, code: "invalid_input", passthrough: true},
	{target: service.ErrNotLoaded, status: http.StatusServiceUnavailable, code: "not_loaded", message: service.LoadFailedMessage},
	{target: repository.ErrNotFound, status: http.StatusNotFound, code: "not_found", message: "player, match or rating no longer exists"},
	{target: repository.ErrAlreadyExists, status: http.StatusConflict, code: "already_exists", message: "already recorded, a player is rated once per match"},
	{target: repository.ErrConflict, status: http.StatusConflict, code: "conflict", message: "change rejected by the match store"},
}

// MapError picks the status and payload for err. Validation failures carry
// their per-field messages so the edit forms can highlight them.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}
	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}
	for _, r := range errorRules {
		if !errors.Is(err, r.target) {
			continue
		}
		msg := r.message
		if r.passthrough {
			msg = err.Error()
		}
		return r.status, ErrorPayload{Error: r.code, Message: msg}
	}
	return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// WriteInvalid writes a 400 for a single malformed request field.
func WriteInvalid(c *gin.Context, field, message string) {
	WriteError(c, service.NewInvalidInputError(service.FieldError{Field: field, Message: message}))
}
