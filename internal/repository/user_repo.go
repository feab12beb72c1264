package repository

import (
	"context"

	"kecdesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	// ListActiveWithRole returns active users holding role among their roles.
	ListActiveWithRole(ctx context.Context, role string) ([]model.User, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) ListActiveWithRole(ctx context.Context, role string) ([]model.User, error) {
	var candidates []model.User
	// roles is a comma-separated list; LIKE narrows, HasRole decides
	err := r.db.WithContext(ctx).
		Where("active = true AND roles LIKE ?", "%"+role+"%").
		Order("username ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	users := candidates[:0]
	for _, u := range candidates {
		if u.HasRole(role) {
			users = append(users, u)
		}
	}
	return users, nil
}
