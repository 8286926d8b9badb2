package models

import (
	"time"
)

type Folder struct {
	ID       string  `json:"id" db:"id"`
	UserID   string  `json:"user_id" db:"user_id"`
	ParentID *string `json:"parent_id" db:"parent_id"` // NULL = root level
	Name     string  `json:"name" db:"name"`
	Color    *string `json:"color,omitempty" db:"color"`
	Emoji    *string `json:"emoji,omitempty" db:"emoji"`

	// Position orders siblings within the same (user_id, parent_id) scope.
	// Gaps are allowed; new folders get max(sibling positions) + 1.
	Position int `json:"position" db:"position"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	// Populated on reads, never stored.
	Children     []*Folder `json:"children,omitempty"`
	PromptsCount int       `json:"prompts_count"`
}

// IsDeleted reports whether the folder is tombstoned.
func (f *Folder) IsDeleted() bool {
	return f.DeletedAt != nil
}
