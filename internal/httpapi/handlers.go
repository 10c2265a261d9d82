package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/DoyleJ11/cricket-auction-backend/internal/action"
	"github.com/DoyleJ11/cricket-auction-backend/internal/auction"
	"github.com/DoyleJ11/cricket-auction-backend/internal/engine"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeResult sends res with ok on success, or the status its error maps to.
func writeResult(w http.ResponseWriter, ok int, res action.Result) {
	if res.Success {
		writeJSON(w, ok, res)
		return
	}
	writeJSON(w, statusFor(res.Err()), res)
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, action.ErrValidation),
		errors.Is(err, engine.ErrUnknownStatus),
		errors.Is(err, engine.ErrEmptyGroup),
		errors.Is(err, engine.ErrEmptyPlayer),
		errors.Is(err, engine.ErrUnknownGroup),
		errors.Is(err, engine.ErrPlayerNotInGroup),
		errors.Is(err, engine.ErrUnsupportedCommand):
		return http.StatusBadRequest
	case errors.Is(err, action.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, action.ErrConflict),
		errors.Is(err, auction.ErrAuctionExists),
		errors.Is(err, engine.ErrInvalidTransition),
		errors.Is(err, engine.ErrGroupAlreadySet),
		errors.Is(err, engine.ErrGroupNotSet),
		errors.Is(err, engine.ErrPlayerAlreadySet):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return action.Validation("malformed request body: " + err.Error())
	}
	return nil
}

func badBody(w http.ResponseWriter, err error) {
	writeResult(w, http.StatusOK, action.Fail(err))
}
