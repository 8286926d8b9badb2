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

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, user_id, parent_id, name, color, emoji, position, created_at, updated_at, deleted_at"

func (r *PostgresFolderRepository) scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.Color,
		&folder.Emoji,
		&folder.Position,
		&folder.CreatedAt,
		&folder.UpdatedAt,
		&folder.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create inserts a new folder, assigning an id if none is set
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, parent_id, name, color, emoji, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Folders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ID,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.Color,
		folder.Emoji,
		folder.Position,
		folder.CreatedAt,
		folder.UpdatedAt,
	)

	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("folder %q: %w", folder.Name, &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			})
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a non-deleted folder by id
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, folderColumns, r.tables.Folders)

	folder, err := r.scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByIDIncludingDeleted retrieves a folder by id even if tombstoned
func (r *PostgresFolderRepository) GetByIDIncludingDeleted(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, folderColumns, r.tables.Folders)

	folder, err := r.scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update persists name, parent, color, emoji and position changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, color = $3, emoji = $4, position = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8 AND deleted_at IS NULL
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Color,
		folder.Emoji,
		folder.Position,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)

	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdatePlacement moves a folder to a parent/position pair
func (r *PostgresFolderRepository) UpdatePlacement(ctx context.Context, userID, id string, parentID *string, position int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, position = $2, updated_at = now()
		WHERE id = $3 AND user_id = $4 AND deleted_at IS NULL
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, parentID, position, id, userID)
	if err != nil {
		return fmt.Errorf("update folder placement: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists non-deleted immediate children ordered by position
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
		ORDER BY position ASC, created_at ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := r.scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// ListChildIDs returns ids of non-deleted folders under any of parentIDs
func (r *PostgresFolderRepository) ListChildIDs(ctx context.Context, userID string, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE user_id = $1 AND parent_id = ANY($2) AND deleted_at IS NULL
	`, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list child ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan folder id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder ids: %w", err)
	}

	return ids, nil
}

// GetAllByOwner retrieves all non-deleted folders for a user
func (r *PostgresFolderRepository) GetAllByOwner(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY position ASC, created_at ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get all folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := r.scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// NextPosition computes max(position)+1 among non-deleted siblings.
// It first takes a transaction-scoped advisory lock on the (user, parent)
// scope so two concurrent creations under the same parent cannot both
// read the same maximum. Callers must be inside a transaction.
func (r *PostgresFolderRepository) NextPosition(ctx context.Context, userID string, parentID *string) (int, error) {
	exec := GetExecutor(ctx, r.pool)

	lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || COALESCE($2, 'root'), 0))`
	if _, err := exec.Exec(ctx, lockQuery, userID, parentID); err != nil {
		return 0, fmt.Errorf("lock sibling scope: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position), 0) + 1
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
	`, r.tables.Folders)

	var position int
	if err := exec.QueryRow(ctx, query, userID, parentID).Scan(&position); err != nil {
		return 0, fmt.Errorf("next sibling position: %w", err)
	}

	return position, nil
}

// SoftDeleteByIDs tombstones the given folders
func (r *PostgresFolderRepository) SoftDeleteByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = now(), updated_at = now()
		WHERE user_id = $1 AND id = ANY($2) AND deleted_at IS NULL
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID, ids); err != nil {
		return fmt.Errorf("soft delete folders: %w", err)
	}

	return nil
}

// RestoreByIDs clears the tombstone on the given folders
func (r *PostgresFolderRepository) RestoreByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NULL, updated_at = now()
		WHERE user_id = $1 AND id = ANY($2) AND deleted_at IS NOT NULL
	`, r.tables.Folders)

	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, userID, ids); err != nil {
		return fmt.Errorf("restore folders: %w", err)
	}

	return nil
}
