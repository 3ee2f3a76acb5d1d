package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one gorm handle so a group of writes
// can share a transaction.
type Store struct {
	db         *gorm.DB
	Users      *UserRepository
	Categories *CategoryRepository
	Tasks      *TaskRepository
	Recurrence *RecurrenceRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Tasks:      NewTaskRepository(db),
		Recurrence: NewRecurrenceRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single transaction. Any
// error returned by fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
