package services

import (
	"context"

	"promptstash/internal/domain/models"
	"promptstash/internal/httputil"
)

// FolderService handles folder business logic. Every operation takes the
// owner id explicitly; there is no ambient current-user state.
type FolderService interface {
	// CreateFolder creates a new folder under an optional parent.
	CreateFolder(ctx context.Context, ownerID string, req *CreateFolderRequest) (*models.Folder, error)

	// GetFolder retrieves a folder with its immediate children, prompt
	// counts and directly contained prompts.
	GetFolder(ctx context.Context, ownerID, folderID string) (*FolderContents, error)

	// UpdateFolder renames, recolors or reparents a folder. Only supplied
	// fields are changed.
	UpdateFolder(ctx context.Context, ownerID, folderID string, req *UpdateFolderRequest) (*models.Folder, error)

	// DeleteFolder soft-deletes a folder, its descendant folders and the
	// prompts contained anywhere in the subtree, atomically.
	DeleteFolder(ctx context.Context, ownerID, folderID string) error

	// RestoreFolder un-tombstones a folder, restoring tombstoned
	// ancestors first so the folder is reachable again. Descendants are
	// left untouched.
	RestoreFolder(ctx context.Context, ownerID, folderID string) (*models.Folder, error)

	// ReorderFolders applies a batch of position/parent placements.
	// Entries for folders the caller does not own are skipped silently.
	ReorderFolders(ctx context.Context, ownerID string, entries []ReorderEntry) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // nil or "" = root level
	Color    *string `json:"color,omitempty"`
	Emoji    *string `json:"emoji,omitempty"`
}

// UpdateFolderRequest represents a partial folder update. ParentID is
// tri-state: absent = keep, null = move to root, value = move under it.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
	Color    *string                 `json:"color,omitempty"`
	Emoji    *string                 `json:"emoji,omitempty"`
}

// ReorderEntry is one placement in a batch reorder.
type ReorderEntry struct {
	FolderID string  `json:"id"`
	Position int     `json:"position"`
	ParentID *string `json:"parent_id,omitempty"`
}

// FolderContents is a folder with its eagerly loaded surroundings.
type FolderContents struct {
	Folder  *models.Folder  `json:"folder"`
	Prompts []models.Prompt `json:"prompts"`
}
