package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/response"
	"golang.org/x/crypto/bcrypt"
)

const authRealm = `Basic realm="dic-analyzer", charset="UTF-8"`

// Auth guards the front door with HTTP basic auth against one bcrypt-hashed
// account.
type Auth struct {
	username     string
	passwordHash []byte
}

// NewAuth creates a new Auth middleware.
func NewAuth(username, passwordHash string) *Auth {
	return &Auth{username: username, passwordHash: []byte(passwordHash)}
}

// Authenticate checks basic auth credentials and sets the username in the
// request context.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			a.deny(w, "Missing or invalid Authorization header")
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.username)) == 1
		passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(pass)) == nil
		if !userOK || !passOK {
			a.deny(w, "Invalid username or password")
			return
		}

		next.ServeHTTP(w, r.WithContext(setUsername(r.Context(), user)))
	})
}

func (a *Auth) deny(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", authRealm)
	response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", msg, nil)
}
