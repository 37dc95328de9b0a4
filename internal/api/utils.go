package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"

	"guestchat-backend/pkg/api"
)

type codedError struct {
	err     error
	code    int
	apiCode string
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(code int, err error) error {
	return &codedError{err: err, code: code}
}

func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{err: fmt.Errorf(format, args...), code: code}
}

// TaggedError carries a machine-readable code string alongside the HTTP
// status so clients can branch without parsing error messages.
func TaggedError(code int, apiCode string, err error) error {
	return &codedError{err: err, code: code, apiCode: apiCode}
}

func ParseRequest[T any](r *http.Request) (T, error) {
	var data T
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("error parsing request body", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}
	return data, nil
}

func ParseRequestQueryParams[T any](r *http.Request) (T, error) {
	var data T
	if err := r.ParseForm(); err != nil {
		slog.Error("error parsing form", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}

	err := schema.NewDecoder().Decode(&data, r.Form)
	if err != nil {
		slog.Error("error decoding query params", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request query params")
	}

	return data, nil
}

func RestHandler(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			writeError(w, err)
			return
		}

		if res == nil {
			res = struct{}{}
		}

		WriteJsonResponse(w, res)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	apiCode := api.CodeInternal

	var cerr *codedError
	if errors.As(err, &cerr) {
		status = cerr.code
		if cerr.apiCode != "" {
			apiCode = cerr.apiCode
		} else {
			apiCode = ""
		}
		if status == http.StatusInternalServerError {
			slog.Error("internal server error received in endpoint", "error", err)
		}
	} else {
		slog.Error("received non coded error from endpoint", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(api.Error{Error: err.Error(), Code: apiCode}); encodeErr != nil {
		slog.Error("error serializing error response", "error", encodeErr)
	}
}

func WriteJsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("error serializing response body", "error", err)
		http.Error(w, fmt.Sprintf("error serializing response body: %v", err), http.StatusInternalServerError)
	}
}

// URLParamToken returns the {token} path segment. Tokens are opaque; no
// format validation is applied here beyond presence.
func URLParamToken(r *http.Request) (string, error) {
	token := chi.URLParam(r, "token")
	if len(token) == 0 {
		return "", CodedErrorf(http.StatusBadRequest, "missing {token} url parameter")
	}
	return token, nil
}
