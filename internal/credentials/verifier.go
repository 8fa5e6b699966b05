// Package credentials checks console sign-in credentials against an account
// directory.
package credentials

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/partyplanning/console/internal/auth"
	"github.com/partyplanning/console/internal/domain"
)

// Verifier checks an email/password pair. It returns domain.ErrAccountNotFound
// or domain.ErrWrongPassword when the pair is rejected.
type Verifier interface {
	Verify(ctx context.Context, email, password string) (*domain.User, error)
}

// Account is a directory entry.
type Account struct {
	User         domain.User
	PasswordHash string
}

var validate = validator.New()

// NormalizeEmail trims and lowercases an address. It returns "" when the
// address fails the same email rule the login request is validated with.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return ""
	}
	return email
}

func checkPassword(acct *Account, password string) (*domain.User, error) {
	if err := auth.ComparePassword(acct.PasswordHash, password); err != nil {
		return nil, domain.ErrWrongPassword
	}
	user := acct.User
	return &user, nil
}
