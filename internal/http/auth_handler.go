package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Deepanshu0211/MahadevEnterprises/internal/auth"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/domain"
	"github.com/Deepanshu0211/MahadevEnterprises/internal/session"
	"go.uber.org/zap"
)

type AuthHandler struct {
	sessions *session.Manager
	timeout  time.Duration
}

func NewAuthHandler(sessions *session.Manager, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		handleError(w, r, err)
		return
	}

	var s *auth.Session
	clientID := clientIDFromContext(r.Context())
	err := withClient(ctx, h.sessions, r, func(c *session.Client) (err error) {
		s, err = c.Auth.Login(ctx, creds)
		return err
	})
	if err != nil {
		requestLogger(r).Info("login rejected", zap.String("client_id", clientID))
		handleError(w, r, err)
		return
	}

	requestLogger(r).Info("login succeeded",
		zap.String("client_id", clientID),
		zap.String("user_id", s.User.ID),
		zap.String("role", string(s.User.Role)))
	respondJSON(w, http.StatusOK, s)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	_ = withClient(ctx, h.sessions, r, func(c *session.Client) error {
		c.Auth.Logout(ctx)
		return nil
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var s *auth.Session
	err := withClient(ctx, h.sessions, r, func(c *session.Client) error {
		var ok bool
		if s, ok = c.Auth.CurrentSession(); !ok {
			return domain.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, s)
}
