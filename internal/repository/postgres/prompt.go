package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"promptstash/internal/domain"
	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
)

// PostgresPromptRepository implements the PromptRepository interface
type PostgresPromptRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(config *RepositoryConfig) repositories.PromptRepository {
	return &PostgresPromptRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const promptColumns = "id, user_id, folder_id, title, created_at, updated_at, deleted_at"

func (r *PostgresPromptRepository) scanPrompt(row interface{ Scan(...any) error }) (*models.Prompt, error) {
	var prompt models.Prompt
	err := row.Scan(
		&prompt.ID,
		&prompt.UserID,
		&prompt.FolderID,
		&prompt.Title,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
		&prompt.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// Create inserts a new prompt, assigning an id if none is set
func (r *PostgresPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, folder_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Prompts)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		prompt.ID,
		prompt.UserID,
		prompt.FolderID,
		prompt.Title,
		prompt.CreatedAt,
		prompt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted prompt by id
func (r *PostgresPromptRepository) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, promptColumns, r.tables.Prompts)

	prompt, err := r.scanPrompt(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get prompt: %w", err)
	}

	return prompt, nil
}

// UpdateFolderRef reassigns the prompt's folder
func (r *PostgresPromptRepository) UpdateFolderRef(ctx context.Context, id string, folderID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, r.tables.Prompts)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, id)
	if err != nil {
		if isPgForeignKeyError(err) {
			return fmt.Errorf("folder does not exist: %w", domain.ErrInvalidParent)
		}
		return fmt.Errorf("update prompt folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists non-deleted prompts directly in a folder
func (r *PostgresPromptRepository) ListByFolder(ctx context.Context, userID string, folderID *string) ([]models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND folder_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`, promptColumns, r.tables.Prompts)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []models.Prompt
	for rows.Next() {
		prompt, err := r.scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, *prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return prompts, nil
}

// SoftDeleteByFolderIDs tombstones every non-deleted prompt in folderIDs
func (r *PostgresPromptRepository) SoftDeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND folder_id = ANY($2) AND deleted_at IS NULL
	`, r.tables.Prompts)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID, folderIDs); err != nil {
		return fmt.Errorf("soft delete prompts: %w", err)
	}

	return nil
}

// CountByFolder returns non-deleted prompt counts keyed by folder id
func (r *PostgresPromptRepository) CountByFolder(ctx context.Context, userID string) (map[string]int, error) {
	query := fmt.Sprintf(`
		SELECT folder_id, COUNT(*)
		FROM %s
		WHERE user_id = $1 AND folder_id IS NOT NULL AND deleted_at IS NULL
		GROUP BY folder_id
	`, r.tables.Prompts)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("count prompts by folder: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var folderID string
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, fmt.Errorf("scan prompt count: %w", err)
		}
		counts[folderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompt counts: %w", err)
	}

	return counts, nil
}
