package dto

import "github.com/partyplanning/console/internal/session"

// LoginRequest payload for the login form.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// SessionResponse wraps the session snapshot returned to the console.
type SessionResponse struct {
	Session  session.Session `json:"session"`
	Redirect string          `json:"redirect,omitempty"`
}

// ViewResponse is the placeholder payload of a rendered console view.
type ViewResponse struct {
	View    string          `json:"view"`
	Title   string          `json:"title"`
	Path    string          `json:"path"`
	Session session.Session `json:"session"`
}
