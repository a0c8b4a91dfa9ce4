// Package session keeps a browser tied to its in-progress attempts. The
// cookie carries only an opaque id signed with HS256; it is not an
// authentication token.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/platform/logger"
)

const CookieName = "quiz_session"

const issuer = "mindengage-quiz"

var ErrInvalid = errors.New("session: invalid token")

type sidKey struct{}

// ID returns the session id Middleware attached to r, or "" outside it.
func ID(r *http.Request) string {
	sid, _ := r.Context().Value(sidKey{}).(string)
	return sid
}

func withID(r *http.Request, sid string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sidKey{}, sid))
}

type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

type Signer struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Issue(sid string) (string, error) {
	now := s.now()
	claims := &Claims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

// Parse returns the session id carried by tokenStr.
func (s *Signer) Parse(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", errors.Join(ErrInvalid, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.SID == "" {
		return "", ErrInvalid
	}
	return c.SID, nil
}

// Middleware puts the caller's session id on the request context, minting a
// fresh id and cookie when the request has none or an invalid one.
func (s *Signer) Middleware(log *logger.Logger, secure bool) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(CookieName); err == nil {
				if sid, err := s.Parse(c.Value); err == nil {
					next.ServeHTTP(w, withID(r, sid))
					return
				}
				log.Debug("session cookie rejected, issuing a new one")
			}

			sid := uuid.NewString()
			tok, err := s.Issue(sid)
			if err != nil {
				log.Error("issue session token", "error", err)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    tok,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  s.now().Add(s.ttl),
			})
			next.ServeHTTP(w, withID(r, sid))
		})
	}
}
