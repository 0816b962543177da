package repository

import (
	"context"

	"memora/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) EnsureByEmail(ctx context.Context, u *user.User) (user.User, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(u).Error
	if err != nil {
		return user.User{}, ClassifyError(err)
	}
	return r.GetUserByEmail(ctx, u.Email)
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return user.User{}, ClassifyError(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return user.User{}, ClassifyError(err)
	}
	return u, nil
}

func (r *PostgresUserRepository) LockUser(ctx context.Context, id uuid.UUID) error {
	var u user.User
	err := forUpdate(r.db.WithContext(ctx)).
		Select("id").
		Where("id = ?", id).
		First(&u).Error
	return ClassifyError(err)
}
