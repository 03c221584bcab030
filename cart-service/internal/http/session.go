package http

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)

type sessionKey struct{}

var validSession = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// SessionMiddleware resolves the storefront session from the X-Session-ID
// header or the session_id cookie, issuing a new one when neither is usable.
// The id is echoed back in both.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !validSession.MatchString(id) {
			id = ""
			if c, err := r.Cookie(SessionCookie); err == nil && validSession.MatchString(c.Value) {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(SessionHeader, id)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
