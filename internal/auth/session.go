// Package auth implements password hashing and cookie-carried sessions.
//
// A session is an HS256-signed token holding the user id, set as an
// HTTP-only cookie. The signing secret comes from configuration, so
// sessions survive process restarts as long as the secret is stable.
package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "omnibudget_session"

var ErrNoSession = errors.New("no valid session")

// SessionManager issues and resolves session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Issue returns a signed session token for the user and its expiry.
func (m *SessionManager) Issue(userID int64) (string, time.Time, error) {
	exp := time.Now().Add(m.ttl)
	claims := &sessionClaims{
		UserID: strconv.FormatInt(userID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Parse validates a session token and returns the user id it carries.
func (m *SessionManager) Parse(tokenStr string) (int64, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return 0, ErrNoSession
	}
	if !tkn.Valid {
		return 0, ErrNoSession
	}
	id, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return id, nil
}

// SetCookie establishes the session on the response.
func (m *SessionManager) SetCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie drops the session on the response.
func (m *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID resolves the authenticated user id from the request cookie.
// Returns ErrNoSession for missing, malformed, or expired sessions.
func (m *SessionManager) UserID(r *http.Request) (int64, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return 0, ErrNoSession
	}
	return m.Parse(c.Value)
}
