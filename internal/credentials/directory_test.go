package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/partyplanning/console/internal/domain"
)

func newDemoDirectory(t *testing.T, latency time.Duration) *Directory {
	t.Helper()
	accounts, err := DemoAccounts(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("DemoAccounts: %v", err)
	}
	return NewDirectory(latency, accounts...)
}

func TestDirectory_Verify(t *testing.T) {
	dir := newDemoDirectory(t, 0)
	ctx := context.Background()

	user, err := dir.Verify(ctx, "Admin@PartyPlanning.com ", DemoPassword)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.Role != domain.RoleAdmin || user.ID == "" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := dir.Verify(ctx, "admin@partyplanning.com", "wrong"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if _, err := dir.Verify(ctx, "nobody@x.com", "anything"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := dir.Verify(ctx, "", DemoPassword); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for empty email, got %v", err)
	}
}

func TestDirectory_ReturnsInactiveAccounts(t *testing.T) {
	dir := newDemoDirectory(t, 0)
	user, err := dir.Verify(context.Background(), "former.staff@partyplanning.com", DemoPassword)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.IsActive {
		t.Fatalf("expected inactive account")
	}
}

func TestDirectory_LatencyHonorsContext(t *testing.T) {
	dir := newDemoDirectory(t, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := dir.Verify(ctx, "admin@partyplanning.com", DemoPassword); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDirectory_Add(t *testing.T) {
	dir := NewDirectory(0)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	dir.Add(Account{User: domain.User{ID: "u-9", Email: "new@partyplanning.com", Role: domain.RoleStaff, IsActive: true}, PasswordHash: string(hash)})

	if _, err := dir.Verify(context.Background(), "new@partyplanning.com", "s3cret"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		" Admin@X.com ":  "admin@x.com",
		"":               "",
		"   ":            "",
		"not-an-email":   "",
		"Name <a@b.com>": "",
		"a@b.co":         "a@b.co",
		`"a b"@x.com`:    `"a b"@x.com`,
		"a@localhost":    "",
		"a@x":            "",
		"a@[127.0.0.1]":  "",
	}
	for in, want := range tests {
		if got := NormalizeEmail(in); got != want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

type stubRepo struct {
	accounts map[string]*Account
	created  int
}

func (r *stubRepo) Create(_ context.Context, acct *Account) error {
	r.created++
	acct.User.ID = "generated"
	clone := *acct
	r.accounts[NormalizeEmail(acct.User.Email)] = &clone
	return nil
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	acct, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *acct
	return &clone, nil
}

func TestRepositoryVerifier(t *testing.T) {
	accounts, err := DemoAccounts(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("DemoAccounts: %v", err)
	}
	repo := &stubRepo{accounts: map[string]*Account{}}

	created, err := Seed(context.Background(), repo, accounts)
	if err != nil || created != len(accounts) {
		t.Fatalf("Seed: %d %v", created, err)
	}
	again, err := Seed(context.Background(), repo, accounts)
	if err != nil || again != 0 {
		t.Fatalf("second Seed should be a no-op: %d %v", again, err)
	}

	v := NewRepositoryVerifier(repo)
	if _, err := v.Verify(context.Background(), "MANAGER@partyplanning.com", DemoPassword); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := v.Verify(context.Background(), "manager@partyplanning.com", "nope"); !errors.Is(err, domain.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if _, err := v.Verify(context.Background(), "ghost@partyplanning.com", DemoPassword); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
