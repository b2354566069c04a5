package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified user handed over by the login collaborator.
type Identity struct {
	UserID string `json:"userId" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile"`
	Avatar string `json:"avatar,omitempty"`
}

// Session is the explicit dashboard session context passed to data access.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

// SessionClaims is the signed token payload of a session.
type SessionClaims struct {
	UserID  string `json:"userid"`
	Name    string `json:"name"`
	Mobile  string `json:"mobile,omitempty"`
	Avatar  string `json:"avatar,omitempty"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

// IssuedSession is returned to the client at login.
type IssuedSession struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expiresIn"`
	Session   *Session  `json:"user"`
	IssuedAt  time.Time `json:"issuedAt"`
}
