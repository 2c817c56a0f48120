package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/scardogs/justines-cargo-backoffice/internal/shared"
)

// Service wraps authentication and control panel business rules.
type Service struct {
	repo   Repository
	tokens *shared.TokenStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *shared.TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*shared.Token, *User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(ctx, user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("auth: issue token: %w", err)
	}
	return tok, user, nil
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, tok *shared.Token) error {
	if tok == nil {
		return nil
	}
	return s.tokens.Revoke(ctx, tok.ID)
}

// ListAccounts returns the control panel account list.
func (s *Service) ListAccounts(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateAccount registers a new back-office account.
func (s *Service) CreateAccount(ctx context.Context, input CreateUserInput) (*User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email and password required", shared.ErrInvalidCredentials)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, input, string(hash))
}

// UpdateAccount updates an existing account, rehashing when a new password
// is supplied.
func (s *Service) UpdateAccount(ctx context.Context, id int64, input UpdateUserInput) (*User, error) {
	var hash *string
	if input.Password != nil && *input.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s := string(h)
		hash = &s
	}
	return s.repo.UpdateUser(ctx, id, input, hash)
}

// DeleteAccount removes an account.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
