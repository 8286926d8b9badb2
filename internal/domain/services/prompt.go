package services

import (
	"context"

	"promptstash/internal/domain/models"
)

// PromptService covers the single structural mutation prompts have:
// moving between folders.
type PromptService interface {
	// MovePrompt reassigns a prompt to a folder, or unfolders it when
	// folderID is nil. Prompts are leaves, so no cycle check applies.
	MovePrompt(ctx context.Context, ownerID, promptID string, folderID *string) (*models.Prompt, error)
}
