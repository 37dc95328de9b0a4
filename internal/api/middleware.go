package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"guestchat-backend/pkg/api"
)

type contextKey string

const recruiterIDKey contextKey = "recruiterID"

var (
	errMissingRecruiter = errors.New("missing X-Recruiter-Id header")
	errInvalidRecruiter = errors.New("invalid X-Recruiter-Id header")
)

// RequireRecruiter gates recruiter-only endpoints on the X-Recruiter-Id
// header set by the host platform's auth proxy. The engine trusts the header;
// it does not do its own authentication.
func RequireRecruiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Recruiter-Id")
		if header == "" {
			writeError(w, TaggedError(http.StatusUnauthorized, api.CodeUnauthorized, errMissingRecruiter))
			return
		}

		recruiterID, err := uuid.Parse(header)
		if err != nil {
			writeError(w, TaggedError(http.StatusUnauthorized, api.CodeUnauthorized, errInvalidRecruiter))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), recruiterIDKey, recruiterID)))
	})
}

func RecruiterID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(recruiterIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, TaggedError(http.StatusUnauthorized, api.CodeUnauthorized, errMissingRecruiter)
	}
	return id, nil
}
