package domain

// User is the account record carried by an authenticated session.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Branch      string `json:"branch,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Credentials are submitted by the login form and never stored.
type Credentials struct {
	Email      string
	Password   string
	RememberMe bool
}
