package models

import (
	"time"
)

// Prompt is the content item organized by the folder tree. The folder
// subsystem only touches its structural fields (folder reference, owner,
// soft-delete state); the prompt body lives elsewhere.
type Prompt struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	FolderID  *string    `json:"folder_id" db:"folder_id"` // NULL = unfoldered
	Title     string     `json:"title" db:"title"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}
