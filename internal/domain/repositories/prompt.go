package repositories

import (
	"context"

	"promptstash/internal/domain/models"
)

// PromptRepository exposes the structural slice of the prompt entity the
// folder subsystem needs: folder reference, counts and cascaded deletes.
type PromptRepository interface {
	// Create inserts a new prompt, assigning an id if none is set.
	Create(ctx context.Context, prompt *models.Prompt) error

	// GetByID retrieves a non-deleted prompt by id, regardless of owner.
	GetByID(ctx context.Context, id string) (*models.Prompt, error)

	// UpdateFolderRef reassigns the prompt's folder. A nil folderID makes
	// the prompt unfoldered.
	UpdateFolderRef(ctx context.Context, id string, folderID *string) error

	// ListByFolder lists non-deleted prompts directly in a folder.
	ListByFolder(ctx context.Context, userID string, folderID *string) ([]models.Prompt, error)

	// SoftDeleteByFolderIDs tombstones every non-deleted prompt whose
	// folder is any of folderIDs. Part of the delete cascade.
	SoftDeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) error

	// CountByFolder returns non-deleted prompt counts keyed by folder id.
	CountByFolder(ctx context.Context, userID string) (map[string]int, error)
}
