package service

import (
	"context"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	store *repository.Store
}

func NewCategoryService(store *repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// Page returns one page of the distinct categories on userID's tasks.
func (s *CategoryService) Page(ctx context.Context, userID int64, page, size int) ([]string, error) {
	return s.store.Tasks.ListDistinctCategories(ctx, userID, page, size)
}

// Suggestions lists the fixed categories followed by labels userID has used
// before that are not among them.
func (s *CategoryService) Suggestions(ctx context.Context, userID int64) ([]string, error) {
	out := append([]string(nil), model.SuggestedCategories...)
	labels, err := s.store.Categories.ListByUser(ctx, userID)
	if err != nil {
		return out, err
	}
	for _, label := range labels {
		if !model.IsSuggestedCategory(label.Name) {
			out = append(out, label.Name)
		}
	}
	return out, nil
}
