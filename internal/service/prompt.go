package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"promptstash/internal/domain"
	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
	"promptstash/internal/domain/services"
)

type promptService struct {
	promptRepo repositories.PromptRepository
	folderRepo repositories.FolderRepository
	logger     *slog.Logger
}

// NewPromptService creates a new prompt service
func NewPromptService(
	promptRepo repositories.PromptRepository,
	folderRepo repositories.FolderRepository,
	logger *slog.Logger,
) services.PromptService {
	return &promptService{
		promptRepo: promptRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// MovePrompt reassigns one prompt's folder. Guarded by ownership only:
// prompts are leaves, so no cycle can result. A nil folderID unfolders
// the prompt regardless of the previous folder's state.
func (s *promptService) MovePrompt(ctx context.Context, ownerID, promptID string, folderID *string) (*models.Prompt, error) {
	prompt, err := s.promptRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if prompt.UserID != ownerID {
		return nil, fmt.Errorf("prompt %s: %w", promptID, domain.ErrUnauthorized)
	}

	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	if folderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *folderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("folder %s: %w", *folderID, domain.ErrInvalidParent)
			}
			return nil, err
		}
		if folder.UserID != ownerID {
			return nil, fmt.Errorf("folder %s: %w", *folderID, domain.ErrInvalidParent)
		}
	}

	if err := s.promptRepo.UpdateFolderRef(ctx, promptID, folderID); err != nil {
		return nil, err
	}
	prompt.FolderID = folderID

	s.logger.Info("prompt moved",
		"id", promptID,
		"user_id", ownerID,
		"folder_id", folderID,
	)

	return prompt, nil
}
