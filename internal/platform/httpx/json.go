package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErr renders err. An *Error is written as-is; anything else is logged and becomes a 500
// so internal messages never reach the client.
func WriteErr(w http.ResponseWriter, log *zap.Logger, err error) {
	var he *Error
	if errors.As(err, &he) {
		WriteJSON(w, he.Status, errorBody{Error: he.Message, Details: he.Details})
		return
	}
	if log != nil {
		log.Error("request failed", zap.Error(err))
	}
	WriteJSON(w, ErrInternal.Status, errorBody{Error: ErrInternal.Message})
}

// DecodeJSON decodes the request body into dst. Unknown fields are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	if err := decode(r, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return BadRequest("Request body is required")
		}
		return err
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be absent. An empty body,
// chunked or not, leaves dst untouched.
func DecodeOptionalJSON(r *http.Request, dst any) error {
	if err := decode(r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return io.EOF
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return BadRequest("Invalid JSON body")
	}
	return nil
}
