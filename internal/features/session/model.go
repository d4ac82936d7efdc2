package session

import (
	"time"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAuthority Role = "authority"
)

// User is a reviewer identity as returned by the identity provider.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	Role       Role   `json:"role"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

type Session struct {
	ID        string    `json:"session_id"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
	EventExpired   EventKind = "expired"
)

// Event is delivered to subscribers whenever the set of active sessions changes.
type Event struct {
	Kind    EventKind
	Session Session
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,notblank"`
}

type LoginResponse struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}
