package repositories

import (
	"context"

	"promptstash/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// All methods participate in a context transaction when one is present.
type FolderRepository interface {
	// Create inserts a new folder, assigning an id if none is set.
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a non-deleted folder by id, regardless of owner.
	// Ownership is the service layer's concern so it can distinguish
	// "not yours" from "does not exist".
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByIDIncludingDeleted retrieves a folder by id even if tombstoned.
	GetByIDIncludingDeleted(ctx context.Context, id string) (*models.Folder, error)

	// Update persists name, parent, color, emoji and position changes.
	Update(ctx context.Context, folder *models.Folder) error

	// UpdatePlacement moves a folder to a parent/position pair without
	// touching its other fields. Used by batch reorder.
	UpdatePlacement(ctx context.Context, userID, id string, parentID *string, position int) error

	// ListChildren lists non-deleted immediate children ordered by position.
	// A nil parentID lists root-level folders.
	ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error)

	// ListChildIDs returns ids of non-deleted folders whose parent is any
	// of parentIDs. Supports the iterative subtree walk.
	ListChildIDs(ctx context.Context, userID string, parentIDs []string) ([]string, error)

	// GetAllByOwner retrieves all non-deleted folders for a user, ordered
	// by position.
	GetAllByOwner(ctx context.Context, userID string) ([]models.Folder, error)

	// NextPosition computes max(position)+1 among non-deleted siblings.
	// Must be called inside a transaction: it takes a per-(user, parent)
	// advisory lock so concurrent sibling creation cannot collide.
	NextPosition(ctx context.Context, userID string, parentID *string) (int, error)

	// SoftDeleteByIDs tombstones the given folders for the user.
	SoftDeleteByIDs(ctx context.Context, userID string, ids []string) error

	// RestoreByIDs clears the tombstone on the given folders for the user.
	RestoreByIDs(ctx context.Context, userID string, ids []string) error
}
