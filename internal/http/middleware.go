package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ClientCookie   = "sf_client"
	ClientIDHeader = "X-Client-ID"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

type ctxKey int

const (
	clientIDKey ctxKey = iota
	loggerKey
)

// ClientIDMiddleware identifies the browser client by cookie or header and
// mints a new ID, set as a cookie, when neither carries a valid one.
func ClientIDMiddleware(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(ClientIDHeader)
			if c, err := r.Cookie(ClientCookie); clientID == "" && err == nil {
				clientID = c.Value
			}

			if _, err := uuid.Parse(clientID); err != nil {
				clientID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookie,
					Value:    clientID,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set(ClientIDHeader, clientID)
			ctx := context.WithValue(r.Context(), clientIDKey, clientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIDFromContext(ctx context.Context) string {
	if clientID, ok := ctx.Value(clientIDKey).(string); ok {
		return clientID
	}
	return ""
}

// RequestLogger logs one line per request and exposes a request-scoped logger to handlers.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			l := logger.FromContext(r.Context(), base).With(
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
			ctx := context.WithValue(r.Context(), loggerKey, l)

			defer func() {
				l.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

func requestLogger(r *http.Request) *zap.Logger {
	if l, ok := r.Context().Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
