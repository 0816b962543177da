package services

import (
	"context"
	"fmt"
	"strings"

	"memora/internal/domain/user"
	"memora/internal/repository"
	memora_errors "memora/pkg/errors"

	"gorm.io/gorm"
)

const authProvider = "jwt"

type UserService struct {
	db   *gorm.DB
	opts Options
}

func NewUserService(db *gorm.DB, opts Options) *UserService {
	return &UserService{db: db, opts: opts.withDefaults()}
}

// EnsureUser returns the user row for id, creating it on first sight.
func (s *UserService) EnsureUser(ctx context.Context, id user.Identity) (user.User, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return ensureUser(ctx, s.db, id)
}

// Lookup returns the user for an identity without creating it.
func (s *UserService) Lookup(ctx context.Context, id user.Identity) (user.User, error) {
	if !id.Valid() {
		return user.User{}, memora_errors.ErrUnauthorized
	}
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return repository.NewUserRepository(s.db).GetUserByEmail(ctx, normalizeEmail(id.Email))
}

// ensureUser upserts by email on db, which may be a transaction.
func ensureUser(ctx context.Context, db *gorm.DB, id user.Identity) (user.User, error) {
	if !id.Valid() {
		return user.User{}, memora_errors.ErrUnauthorized
	}
	u, err := repository.NewUserRepository(db).EnsureByEmail(ctx, &user.User{
		ExternalID:   id.UID,
		Email:        normalizeEmail(id.Email),
		Name:         id.DisplayName(),
		AuthProvider: authProvider,
	})
	if err != nil {
		return user.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
