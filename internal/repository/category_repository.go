package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskbot/internal/model"
)

// CategoryRepository manages per-user category labels.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate returns userID's label called name, adding it on first use.
// An empty name has no label.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID int64, name string) (*model.Category, error) {
	if name == "" {
		return nil, nil
	}
	var category model.Category
	err := r.db.WithContext(ctx).
		Where(model.Category{UserID: userID, Name: name}).
		FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("get or create category %q: %w", name, err)
	}
	return &category, nil
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID int64) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
