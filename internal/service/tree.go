package service

import (
	"context"
	"log/slog"

	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
	"promptstash/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo repositories.FolderRepository
	promptRepo repositories.PromptRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo repositories.FolderRepository,
	promptRepo repositories.PromptRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folderRepo: folderRepo,
		promptRepo: promptRepo,
		logger:     logger,
	}
}

// ListRoots returns root folders ordered by position with one eager
// level of children, all annotated with prompt counts.
func (t *treeService) ListRoots(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	roots, err := t.buildForest(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// Keep exactly one level below the roots.
	for _, root := range roots {
		for _, child := range root.Children {
			child.Children = nil
		}
	}

	return roots, nil
}

// GetTree returns the fully nested folder forest at arbitrary depth.
func (t *treeService) GetTree(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	roots, err := t.buildForest(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("folder tree built",
		"user_id", ownerID,
		"root_count", len(roots),
	)

	return roots, nil
}

// buildForest nests the flat, owner-scoped folder set using a two-pass
// map assembly: first index every node by id, then attach each node to
// its parent. The flat query is ordered by position, and appends keep
// that order within each parent, so siblings come out sorted.
func (t *treeService) buildForest(ctx context.Context, ownerID string) ([]*models.Folder, error) {
	flat, err := t.folderRepo.GetAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	counts, err := t.promptRepo.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// First pass: index every folder node.
	nodes := make(map[string]*models.Folder, len(flat))
	for i := range flat {
		node := flat[i]
		node.PromptsCount = counts[node.ID]
		node.Children = []*models.Folder{}
		nodes[node.ID] = &node
	}

	// Second pass: attach children to parents. A node whose parent is
	// missing from the set (tombstoned out from under it) surfaces as a
	// root rather than disappearing.
	roots := make([]*models.Folder, 0, len(flat))
	for i := range flat {
		node := nodes[flat[i].ID]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*node.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots, nil
}
