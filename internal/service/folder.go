package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"promptstash/internal/config"
	"promptstash/internal/domain"
	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
	"promptstash/internal/domain/services"
)

var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folderRepo repositories.FolderRepository
	promptRepo repositories.PromptRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	promptRepo repositories.PromptRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		promptRepo: promptRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// CreateFolder creates a new folder under an optional parent. The
// sibling position is computed inside the insert transaction so two
// concurrent creations under the same parent cannot collide.
func (s *folderService) CreateFolder(ctx context.Context, ownerID string, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	if req.ParentID != nil {
		if _, err := s.validateParentForCreate(ctx, ownerID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &models.Folder{
		UserID:    ownerID,
		ParentID:  req.ParentID,
		Name:      strings.TrimSpace(req.Name),
		Color:     req.Color,
		Emoji:     req.Emoji,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		position, err := s.folderRepo.NextPosition(txCtx, ownerID, folder.ParentID)
		if err != nil {
			return err
		}
		folder.Position = position

		return s.folderRepo.Create(txCtx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", ownerID,
		"parent_id", folder.ParentID,
		"position", folder.Position,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its immediate children, prompt
// counts and directly contained prompts.
func (s *folderService) GetFolder(ctx context.Context, ownerID, folderID string) (*services.FolderContents, error) {
	folder, err := s.getOwnedFolder(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	children, err := s.folderRepo.ListChildren(ctx, ownerID, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child folders: %w", err)
	}

	counts, err := s.promptRepo.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prompts: %w", err)
	}

	folder.PromptsCount = counts[folder.ID]
	folder.Children = make([]*models.Folder, 0, len(children))
	for i := range children {
		child := children[i]
		child.PromptsCount = counts[child.ID]
		folder.Children = append(folder.Children, &child)
	}

	prompts, err := s.promptRepo.ListByFolder(ctx, ownerID, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	if prompts == nil {
		prompts = []models.Prompt{}
	}

	return &services.FolderContents{
		Folder:  folder,
		Prompts: prompts,
	}, nil
}

// UpdateFolder renames, recolors or reparents a folder. Only supplied
// fields change; reparenting runs the full ancestry guard and assigns a
// fresh position in the new sibling scope.
func (s *folderService) UpdateFolder(ctx context.Context, ownerID, folderID string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.getOwnedFolder(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		folder.Color = req.Color
	}
	if req.Emoji != nil {
		folder.Emoji = req.Emoji
	}

	// Tri-state: only touch the parent if the field was present.
	parentChanged := false
	if req.ParentID.Present {
		if req.ParentID.Value != nil && *req.ParentID.Value != "" {
			newParentID := *req.ParentID.Value
			if folder.ParentID == nil || *folder.ParentID != newParentID {
				parent, err := s.validateReparent(ctx, ownerID, folderID, newParentID)
				if err != nil {
					return nil, err
				}
				folder.ParentID = &parent.ID
				parentChanged = true
			}
		} else if folder.ParentID != nil {
			// null = move to root
			folder.ParentID = nil
			parentChanged = true
		}
	}

	folder.UpdatedAt = time.Now()

	apply := func(txCtx context.Context) error {
		if parentChanged {
			position, err := s.folderRepo.NextPosition(txCtx, ownerID, folder.ParentID)
			if err != nil {
				return err
			}
			folder.Position = position
		}
		return s.folderRepo.Update(txCtx, folder)
	}

	if parentChanged {
		err = s.txManager.ExecTx(ctx, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return nil, err
	}

	counts, err := s.promptRepo.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prompts: %w", err)
	}
	folder.PromptsCount = counts[folder.ID]

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
	)

	return folder, nil
}

// DeleteFolder soft-deletes the folder, every descendant folder and
// every prompt contained anywhere in the subtree, in one transaction.
func (s *folderService) DeleteFolder(ctx context.Context, ownerID, folderID string) error {
	folder, err := s.getOwnedFolder(ctx, ownerID, folderID)
	if err != nil {
		return err
	}

	var deleted int
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		subtreeIDs, err := s.collectSubtreeIDs(txCtx, ownerID, folderID)
		if err != nil {
			return err
		}

		if err := s.folderRepo.SoftDeleteByIDs(txCtx, ownerID, subtreeIDs); err != nil {
			return err
		}
		if err := s.promptRepo.SoftDeleteByFolderIDs(txCtx, ownerID, subtreeIDs); err != nil {
			return err
		}

		deleted = len(subtreeIDs)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"name", folder.Name,
		"user_id", ownerID,
		"folders_deleted", deleted,
	)

	return nil
}

// collectSubtreeIDs gathers the folder and all its descendants with an
// iterative breadth-first walk. The seen set and the depth cap keep the
// walk finite against corrupt parent chains.
func (s *folderService) collectSubtreeIDs(ctx context.Context, ownerID, rootID string) ([]string, error) {
	ids := []string{rootID}
	seen := map[string]bool{rootID: true}
	frontier := []string{rootID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("folder subtree of %s exceeds depth %d: %w", rootID, maxTreeDepth, domain.ErrCyclicMove)
		}

		children, err := s.folderRepo.ListChildIDs(ctx, ownerID, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, id := range children {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			frontier = append(frontier, id)
		}
	}

	return ids, nil
}

// RestoreFolder un-tombstones a folder. Tombstoned ancestors are
// restored first, walking upward until the first live ancestor, so the
// restored folder is reachable again. Descendants and prompts that were
// independently deleted stay deleted.
func (s *folderService) RestoreFolder(ctx context.Context, ownerID, folderID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByIDIncludingDeleted(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != ownerID {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrUnauthorized)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		ids := []string{folder.ID}

		// Collect the contiguous tombstoned ancestor chain.
		visited := map[string]bool{folder.ID: true}
		current := folder
		for depth := 0; current.ParentID != nil; depth++ {
			if depth >= maxTreeDepth {
				return fmt.Errorf("ancestor chain of %s exceeds depth %d: %w", folderID, maxTreeDepth, domain.ErrCyclicMove)
			}
			parent, err := s.folderRepo.GetByIDIncludingDeleted(txCtx, *current.ParentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					break
				}
				return err
			}
			if !parent.IsDeleted() || visited[parent.ID] {
				break
			}
			visited[parent.ID] = true
			ids = append(ids, parent.ID)
			current = parent
		}

		return s.folderRepo.RestoreByIDs(txCtx, ownerID, ids)
	})
	if err != nil {
		return nil, err
	}

	restored, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}

	counts, err := s.promptRepo.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count prompts: %w", err)
	}
	restored.PromptsCount = counts[restored.ID]

	s.logger.Info("folder restored",
		"id", folderID,
		"user_id", ownerID,
	)

	return restored, nil
}

// ReorderFolders applies a batch of placements. Entries for folders the
// caller does not own are skipped silently: a client-side batch may
// legitimately include stale rows that belong to nobody or to someone
// else. Entries whose new parent fails the ancestry guard are skipped
// too, with a warning.
func (s *folderService) ReorderFolders(ctx context.Context, ownerID string, entries []services.ReorderEntry) error {
	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, entry := range entries {
			folder, err := s.folderRepo.GetByID(txCtx, entry.FolderID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					s.logger.Debug("reorder entry skipped: unknown folder", "folder_id", entry.FolderID)
					continue
				}
				return err
			}
			if folder.UserID != ownerID {
				s.logger.Debug("reorder entry skipped: foreign folder", "folder_id", entry.FolderID)
				continue
			}

			parentID := entry.ParentID
			if parentID != nil && *parentID == "" {
				parentID = nil
			}

			if parentID != nil && (folder.ParentID == nil || *folder.ParentID != *parentID) {
				if _, err := s.validateReparent(txCtx, ownerID, entry.FolderID, *parentID); err != nil {
					if errors.Is(err, domain.ErrCyclicMove) || errors.Is(err, domain.ErrInvalidParent) {
						s.logger.Warn("reorder entry skipped: invalid parent",
							"folder_id", entry.FolderID,
							"parent_id", *parentID,
							"error", err,
						)
						continue
					}
					return err
				}
			}

			if err := s.folderRepo.UpdatePlacement(txCtx, ownerID, entry.FolderID, parentID, entry.Position); err != nil {
				return err
			}
		}
		return nil
	})
}

// getOwnedFolder resolves an active folder and enforces ownership,
// distinguishing "does not exist" from "not yours".
func (s *folderService) getOwnedFolder(ctx context.Context, ownerID, folderID string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != ownerID {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrUnauthorized)
	}
	return folder, nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
		validation.Field(&req.Color, validation.Length(0, config.MaxFolderColorLength)),
		validation.Field(&req.Emoji, validation.Length(0, config.MaxFolderEmojiLength)),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *services.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && !req.ParentID.Present && req.Color == nil && req.Emoji == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return fmt.Errorf("folder name cannot be empty")
		}
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Length(1, config.MaxFolderNameLength),
				validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
			),
		)
	}
	if req.Color != nil {
		rules = append(rules, validation.Field(&req.Color, validation.Length(0, config.MaxFolderColorLength)))
	}
	if req.Emoji != nil {
		rules = append(rules, validation.Field(&req.Emoji, validation.Length(0, config.MaxFolderEmojiLength)))
	}

	if len(rules) == 0 {
		return nil
	}
	return validation.ValidateStruct(req, rules...)
}
