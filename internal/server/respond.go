package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 64 * 1024

// Error codes in the JSON error body
const (
	CodeNotFound       = "not_found"
	CodeInvalidName    = "invalid_name"
	CodeInvalidRequest = "invalid_request"
	CodeInsufficient   = "insufficient_cards"
	CodeInvalidState   = "invalid_game_state"
	CodeAlreadyExists  = "already_exists"
	CodeConflict       = "concurrent_update"
	CodeInternal       = "internal_error"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine readable code and a message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // client may have gone away
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// parseBody decodes a JSON body of at most maxBodyBytes into v
func parseBody(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", errBadRequest, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, maxBodyBytes)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// classify maps a domain error to a status and code. Order matters: a blank
// player name also matches the not-found class.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrInvalidPlayerName), errors.Is(err, player.ErrInvalidName):
		return http.StatusBadRequest, CodeInvalidName
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeInvalidRequest
	case errors.Is(err, game.ErrInsufficientCards):
		return http.StatusBadRequest, CodeInsufficient
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, game.ErrInvalidGameState):
		return http.StatusConflict, CodeInvalidState
	case errors.Is(err, player.ErrAlreadyExists):
		return http.StatusConflict, CodeAlreadyExists
	case errors.Is(err, game.ErrConcurrentUpdate):
		return http.StatusConflict, CodeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal server error"
	}
	writeError(w, status, code, message)
}
