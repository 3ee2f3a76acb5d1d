package model

import "time"

// Category is a free-text label a user has attached to tasks. Task.Category
// does not reference it; the table only remembers what a user has typed.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"index:idx_user_category_name,unique"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	CreatedAt time.Time
}

// SuggestedCategories are offered on the category step of task creation.
var SuggestedCategories = []string{"Work", "Personal", "Study", "Other"}

// IsSuggestedCategory reports whether name is one of SuggestedCategories.
func IsSuggestedCategory(name string) bool {
	for _, c := range SuggestedCategories {
		if c == name {
			return true
		}
	}
	return false
}
