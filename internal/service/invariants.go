package service

import (
	"context"
	"errors"
	"fmt"

	"promptstash/internal/domain"
	"promptstash/internal/domain/models"
)

// maxTreeDepth bounds every parent-chain walk. Invariant enforcement
// should keep trees far shallower than this; the cap guarantees the walk
// terminates even against corrupt data that already contains a cycle.
const maxTreeDepth = 128

// validateParentForCreate checks that a candidate parent exists and
// belongs to the owner. No cycle is possible on creation.
func (s *folderService) validateParentForCreate(ctx context.Context, ownerID, parentID string) (*models.Folder, error) {
	parent, err := s.folderRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("parent folder %s: %w", parentID, domain.ErrInvalidParent)
		}
		return nil, err
	}
	if parent.UserID != ownerID {
		return nil, fmt.Errorf("parent folder %s: %w", parentID, domain.ErrInvalidParent)
	}
	return parent, nil
}

// validateReparent decides whether folderID may be moved under
// newParentID. It checks self-parenting, parent existence and ownership,
// then walks the candidate parent's ancestor chain: if folderID appears
// anywhere in it, the move would create a cycle.
func (s *folderService) validateReparent(ctx context.Context, ownerID, folderID, newParentID string) (*models.Folder, error) {
	if newParentID == folderID {
		return nil, fmt.Errorf("folder cannot be its own parent: %w", domain.ErrInvalidParent)
	}

	parent, err := s.validateParentForCreate(ctx, ownerID, newParentID)
	if err != nil {
		return nil, err
	}

	// Walk up from the candidate parent. A visited set plus the depth cap
	// keeps the walk finite even if the stored chain is already cyclic.
	visited := map[string]bool{newParentID: true}
	current := parent
	for depth := 0; current.ParentID != nil; depth++ {
		ancestorID := *current.ParentID
		if ancestorID == folderID {
			return nil, fmt.Errorf("folder %s is an ancestor of %s: %w", folderID, newParentID, domain.ErrCyclicMove)
		}
		if visited[ancestorID] || depth >= maxTreeDepth {
			return nil, fmt.Errorf("parent chain of %s does not terminate: %w", newParentID, domain.ErrCyclicMove)
		}
		visited[ancestorID] = true

		current, err = s.folderRepo.GetByID(ctx, ancestorID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Dangling parent reference; the chain ends here.
				return parent, nil
			}
			return nil, err
		}
	}

	return parent, nil
}
