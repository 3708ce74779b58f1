// Package profile scopes state to a browser the way localStorage would: an
// anonymous cookie with a generated id, no identity attached.
package profile

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookieName = "remy_profile"

const cookieLifetime = 365 * 24 * time.Hour

// FromRequest returns the profile id from the request cookie, minting and
// setting one when absent.
func FromRequest(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err == nil && uuid.Validate(cookie.Value) == nil {
		return cookie.Value
	}
	id := uuid.NewString()
	SetCookie(w, id)
	return id
}

func SetCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(cookieLifetime),
	})
}
