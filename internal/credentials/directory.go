package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/partyplanning/console/internal/auth"
	"github.com/partyplanning/console/internal/domain"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "password123"

// Directory is an in-memory account list.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	latency  time.Duration
}

// NewDirectory builds a directory from accounts. latency delays every
// verification to mimic a remote call.
func NewDirectory(latency time.Duration, accounts ...Account) *Directory {
	d := &Directory{accounts: make(map[string]*Account, len(accounts)), latency: latency}
	for i := range accounts {
		acct := accounts[i]
		d.accounts[NormalizeEmail(acct.User.Email)] = &acct
	}
	return d
}

// DemoAccounts returns the console's seeded accounts hashed with cost.
func DemoAccounts(cost int) ([]Account, error) {
	users := []domain.User{
		{Email: "admin@partyplanning.com", DisplayName: "Admin User", Role: domain.RoleAdmin, IsActive: true},
		{Email: "manager@partyplanning.com", DisplayName: "Manager User", Role: domain.RoleManager, Branch: "Downtown", IsActive: true},
		{Email: "staff@partyplanning.com", DisplayName: "Staff User", Role: domain.RoleStaff, Branch: "Downtown", IsActive: true},
		{Email: "former.staff@partyplanning.com", DisplayName: "Former Staff", Role: domain.RoleStaff, Branch: "Uptown", IsActive: false},
	}

	hash, err := auth.HashPassword(DemoPassword, cost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	accounts := make([]Account, 0, len(users))
	for _, u := range users {
		u.ID = uuid.NewString()
		accounts = append(accounts, Account{User: u, PasswordHash: hash})
	}
	return accounts, nil
}

// Add inserts or replaces an account.
func (d *Directory) Add(acct Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[NormalizeEmail(acct.User.Email)] = &acct
}

// Verify implements Verifier.
func (d *Directory) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	if d.latency > 0 {
		timer := time.NewTimer(d.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	key := NormalizeEmail(email)
	if key == "" {
		return nil, domain.ErrAccountNotFound
	}

	d.mu.RLock()
	acct, ok := d.accounts[key]
	d.mu.RUnlock()
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return checkPassword(acct, password)
}
