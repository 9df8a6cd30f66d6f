package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/ports"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyClaims    ctxKey = "web_claims"
)

// requestIDMiddleware tags each request with a correlation ID, honoring
// one supplied by the caller, and echoes it back in the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			httpLogger().ErrorContext(r.Context(), "panic recovered",
				"operation", "http_panic_recovery",
				"outcome", "failure",
				"request_id", requestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
			)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

// meteredWriter tracks the status and body size a handler produced so the
// access log can report them.
type meteredWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (m *meteredWriter) WriteHeader(status int) {
	if m.status == 0 {
		m.status = status
	}
	m.ResponseWriter.WriteHeader(status)
}

func (m *meteredWriter) Write(payload []byte) (int, error) {
	if m.status == 0 {
		m.status = http.StatusOK
	}
	n, err := m.ResponseWriter.Write(payload)
	m.bytes += n
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mw := &meteredWriter{ResponseWriter: w}
		next.ServeHTTP(mw, r)

		status := mw.status
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		outcome := "success"
		switch {
		case status >= 500:
			level = slog.LevelError
			outcome = "failure"
		case status >= 400:
			level = slog.LevelWarn
			outcome = "failure"
		}

		httpLogger().Log(r.Context(), level, "http request completed",
			"operation", "http_request",
			"outcome", outcome,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", status,
			"bytes", mw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFromContext(r.Context()),
		)
	})
}

// authMiddleware unwraps the bearer envelope and re-validates the session
// token against the session store. The envelope alone never grants access;
// a superseded session fails here even with an unexpired envelope.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeMissingBearerError(r.Context(), w, "auth")
			return
		}
		claims, err := h.signer.ParseAndValidate(raw)
		if err != nil {
			writeMappedError(r.Context(), w, "auth", domain.ErrUnauthorized)
			return
		}
		if !h.service.Validate(r.Context(), claims.AccountID, claims.SessionToken) {
			writeMappedError(r.Context(), w, "auth", domain.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// adminMiddleware gates operator endpoints behind the configured API key.
// With no key configured the whole admin surface is disabled.
func (h *Handler) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Admin-Key")
		if h.adminAPIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(h.adminAPIKey)) != 1 {
			writeMappedError(r.Context(), w, "admin_auth", domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDFromContext(ctx context.Context) string {
	v := ctx.Value(ctxKeyRequestID)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func bearerTokenFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errors.New("missing bearer token")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidChannelHandle), errors.Is(err, domain.ErrInvalidPackSize):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid account or password"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusTooManyRequests, "ACCOUNT_LOCKED", "account temporarily locked"
	case errors.Is(err, domain.ErrRecoveryTooSoon):
		return http.StatusTooManyRequests, "RECOVERY_TOO_SOON", "recovery attempted too soon"
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired, "INSUFFICIENT_CREDITS", "not enough credits"
	case errors.Is(err, domain.ErrDuplicateOrigin):
		return http.StatusConflict, "DUPLICATE_ORIGIN", "an account already exists for this origin"
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return http.StatusConflict, "ALREADY_PROCESSED", "purchase request already processed"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrIDAllocationExhausted):
		return http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrDownloadFailed):
		return http.StatusBadGateway, "DOWNLOAD_FAILED", "media retrieval failed, credit refunded"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "shared store unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func claimsFromContext(ctx context.Context) (ports.WebClaims, bool) {
	v := ctx.Value(ctxKeyClaims)
	claims, ok := v.(ports.WebClaims)
	return claims, ok
}
