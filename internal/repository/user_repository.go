package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskbot/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user on first contact, otherwise refreshes the name and
// marks the user active again.
func (r *UserRepository) Upsert(ctx context.Context, id int64, name string) (*model.User, error) {
	user := model.User{ID: id, Name: name, Active: true}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
		}).
		Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &user, nil
}

// Ensure creates the user if missing and leaves an existing row untouched.
func (r *UserRepository) Ensure(ctx context.Context, id int64, name string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where(model.User{ID: id}).
		Attrs(model.User{Name: name, Active: true}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetActive toggles the opt-out flag. Users are never deleted.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("active", active).Error; err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return nil
}

func (r *UserRepository) ListActive(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
