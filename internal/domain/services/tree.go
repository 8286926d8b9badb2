package services

import (
	"context"

	"promptstash/internal/domain/models"
)

// TreeService builds presentation shapes from the flat folder table.
type TreeService interface {
	// ListRoots returns non-deleted root folders ordered by position,
	// each with one eager level of children and prompt counts.
	ListRoots(ctx context.Context, ownerID string) ([]*models.Folder, error)

	// GetTree returns the fully nested folder forest at arbitrary depth.
	GetTree(ctx context.Context, ownerID string) ([]*models.Folder, error)
}
