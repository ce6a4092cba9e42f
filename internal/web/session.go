package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/porelog/internal/core"
	"github.com/JonMunkholm/porelog/internal/logging"
)

// SessionCookie is the name of the cookie carrying the viewer session ID.
const SessionCookie = "porelog_session"

type sessionKey struct{}

// sessionMiddleware resolves the viewer session from its cookie, creating a
// new session (and cookie) when the cookie is missing or the session has
// expired. The session ID and client info are attached to the context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}

		sess, created := s.service.EnsureSession(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.cfg.Session.TTL.Seconds()),
				HttpOnly: true,
				Secure:   s.cfg.Session.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess.ID)
		ctx = logging.WithSessionID(ctx, sess.ID)
		ctx = core.WithClientInfo(ctx, core.ClientInfo{
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the session resolved by sessionMiddleware.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
