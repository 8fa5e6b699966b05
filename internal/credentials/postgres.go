package credentials

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partyplanning/console/internal/domain"
)

// AccountRepository defines persistence access for console accounts.
type AccountRepository interface {
	Create(ctx context.Context, acct *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, acct *Account) error {
	const query = `
        INSERT INTO accounts (email, display_name, role, branch, is_active, password_hash)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
        RETURNING id`

	return r.pool.QueryRow(ctx, query,
		NormalizeEmail(acct.User.Email),
		acct.User.DisplayName,
		acct.User.Role,
		acct.User.Branch,
		acct.User.IsActive,
		acct.PasswordHash,
	).Scan(&acct.User.ID)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const query = `
        SELECT id, email, display_name, role, COALESCE(branch, ''), is_active, password_hash
        FROM accounts WHERE email=$1`

	var (
		acct Account
		role string
	)
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&acct.User.ID,
		&acct.User.Email,
		&acct.User.DisplayName,
		&role,
		&acct.User.Branch,
		&acct.User.IsActive,
		&acct.PasswordHash,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	acct.User.Role = domain.ParseRole(role)
	return &acct, nil
}

// RepositoryVerifier verifies credentials against an AccountRepository.
type RepositoryVerifier struct {
	repo AccountRepository
}

// NewRepositoryVerifier wraps repo.
func NewRepositoryVerifier(repo AccountRepository) *RepositoryVerifier {
	return &RepositoryVerifier{repo: repo}
}

// Verify implements Verifier.
func (v *RepositoryVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	key := NormalizeEmail(email)
	if key == "" {
		return nil, domain.ErrAccountNotFound
	}
	acct, err := v.repo.GetByEmail(ctx, key)
	if err != nil {
		return nil, err
	}
	return checkPassword(acct, password)
}

// Seed inserts accounts whose email is not yet present.
func Seed(ctx context.Context, repo AccountRepository, accounts []Account) (int, error) {
	created := 0
	for i := range accounts {
		acct := accounts[i]
		_, err := repo.GetByEmail(ctx, NormalizeEmail(acct.User.Email))
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return created, err
		}
		if err := repo.Create(ctx, &acct); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
