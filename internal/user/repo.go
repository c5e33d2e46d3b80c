package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("user not found")

type Repository struct {
	db *gorm.DB
}

// NewRepository works on a plain handle or on a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

// Ensure returns the user with id, creating it from email when the identity provider
// knows the account but no local row exists yet. Without an email an unknown id stays ErrNotFound.
func (r *Repository) Ensure(ctx context.Context, id, email string) (*User, error) {
	u, err := r.FindByID(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return u, err
	}
	if email == "" {
		return nil, ErrNotFound
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&User{ID: id, Email: email, CreatedAt: time.Now().UTC()}).Error
	if err != nil {
		return nil, fmt.Errorf("create user %s: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

// FindByIDs loads every user in ids with a single query. Unknown ids are skipped.
func (r *Repository) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return count > 0, nil
}
