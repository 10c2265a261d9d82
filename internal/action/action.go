// Package action holds the uniform result shape returned by every admin
// operation, plus the structured log entry each operation writes.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/cricket-auction-backend/internal/store"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Result is the {data, success, error} envelope handed back to callers.
type Result struct {
	Data    any    `json:"data"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	err error
}

func OK(data any) Result {
	return Result{Data: data, Success: true}
}

func Fail(err error) Result {
	return Result{Data: nil, Success: false, Error: err.Error(), err: err}
}

// Err returns the error behind a failed Result, nil on success.
func (r Result) Err() error { return r.err }

// Validation builds a validation error with the given detail.
func Validation(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// Classify maps store errors onto the taxonomy. Errors that are already
// domain errors pass through unchanged.
func Classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: unable to find %s", ErrNotFound, what)
	case errors.Is(err, store.ErrConflict):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	default:
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
}

// Logger writes one entry per action with its payloads and a timestamp.
type Logger struct {
	log *zap.Logger
	now func() time.Time
}

func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log, now: time.Now}
}

func (l *Logger) Done(name string, req, resp any) {
	l.log.Info(name,
		zap.String("action", name),
		zap.String("requestPayload", payload(req)),
		zap.String("responsePayload", payload(resp)),
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339Nano)),
	)
}

// Failed logs err and returns the failed Result for it.
func (l *Logger) Failed(name string, req any, err error) Result {
	l.log.Error(name,
		zap.String("action", name),
		zap.String("requestPayload", payload(req)),
		zap.String("errorMessage", err.Error()),
		zap.String("timestamp", l.now().UTC().Format(time.RFC3339Nano)),
	)
	return Fail(err)
}

func payload(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
