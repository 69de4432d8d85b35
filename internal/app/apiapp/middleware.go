package apiapp

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

// userIDHeader carries the authenticated user id resolved by the edge
// gateway. Requests reaching this service are already authenticated.
const userIDHeader = "X-User-ID"

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// IdentityMiddleware resolves the caller from the gateway header and
// rejects requests without one.
func IdentityMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(userIDHeader))
			if raw == "" {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "missing user identity",
				})
				return
			}

			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				if log != nil {
					log.Debug("identity middleware rejected header", zap.String("value", raw))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid user identity",
				})
				return
			}

			ctx := identitysvc.WithIdentity(r.Context(), identitysvc.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type lastSeenToucher interface {
	TouchLastSeen(ctx context.Context, userID int64) error
}

// LastSeenMiddleware records caller activity. Best effort: a failed
// touch never blocks the request.
func LastSeenMiddleware(store lastSeenToucher, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store != nil {
				if id, ok := identitysvc.FromContext(r.Context()); ok {
					if err := store.TouchLastSeen(r.Context(), id.UserID); err != nil && log != nil {
						log.Debug("touch last seen failed", zap.Int64("user_id", id.UserID), zap.Error(err))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
