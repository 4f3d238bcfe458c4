package repository

import (
	"context"
	"errors"
	"strings"

	"atelier/internal/database"
	"atelier/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	return r.db.WithContext(ctx).Create(u).Error
}

// FirstOrCreateByEmail returns the user with u.Email, creating it from u when absent.
func (r *UserRepository) FirstOrCreateByEmail(ctx context.Context, u *domain.User) (*domain.User, error) {
	existing, err := r.GetByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return r.GetByEmail(ctx, u.Email)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	email = strings.TrimSpace(strings.ToLower(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads users in one query, keyed by id. Missing ids are simply absent.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}
