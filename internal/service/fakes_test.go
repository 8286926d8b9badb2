package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"promptstash/internal/domain"
	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
)

// In-memory repository fakes. They mirror the Postgres implementations
// closely enough to exercise the service layer: owner scoping, deleted
// filtering, position ordering, and value-copy semantics on reads.

type fakeFolderRepo struct {
	folders map[string]*models.Folder

	failSoftDelete bool
	failRestore    bool
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func copyFolder(f *models.Folder) *models.Folder {
	c := *f
	c.Children = nil
	return &c
}

func (r *fakeFolderRepo) add(f *models.Folder) *models.Folder {
	r.folders[f.ID] = copyFolder(f)
	return f
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID == "" {
		folder.ID = fmt.Sprintf("folder-%d", len(r.folders)+1)
	}
	r.folders[folder.ID] = copyFolder(folder)
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok || f.DeletedAt != nil {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return copyFolder(f), nil
}

func (r *fakeFolderRepo) GetByIDIncludingDeleted(ctx context.Context, id string) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return copyFolder(f), nil
}

func (r *fakeFolderRepo) Update(ctx context.Context, folder *models.Folder) error {
	existing, ok := r.folders[folder.ID]
	if !ok || existing.DeletedAt != nil || existing.UserID != folder.UserID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	r.folders[folder.ID] = copyFolder(folder)
	return nil
}

func (r *fakeFolderRepo) UpdatePlacement(ctx context.Context, userID, id string, parentID *string, position int) error {
	f, ok := r.folders[id]
	if !ok || f.DeletedAt != nil || f.UserID != userID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.ParentID = parentID
	f.Position = position
	f.UpdatedAt = time.Now()
	return nil
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID && f.DeletedAt == nil && sameParent(f.ParentID, parentID) {
			out = append(out, *copyFolder(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeFolderRepo) ListChildIDs(ctx context.Context, userID string, parentIDs []string) ([]string, error) {
	parents := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	var ids []string
	for _, f := range r.folders {
		if f.UserID == userID && f.DeletedAt == nil && f.ParentID != nil && parents[*f.ParentID] {
			ids = append(ids, f.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeFolderRepo) GetAllByOwner(ctx context.Context, userID string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.UserID == userID && f.DeletedAt == nil {
			out = append(out, *copyFolder(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeFolderRepo) NextPosition(ctx context.Context, userID string, parentID *string) (int, error) {
	max := 0
	for _, f := range r.folders {
		if f.UserID == userID && f.DeletedAt == nil && sameParent(f.ParentID, parentID) && f.Position > max {
			max = f.Position
		}
	}
	return max + 1, nil
}

func (r *fakeFolderRepo) SoftDeleteByIDs(ctx context.Context, userID string, ids []string) error {
	if r.failSoftDelete {
		return errors.New("storage failure")
	}
	now := time.Now()
	for _, id := range ids {
		if f, ok := r.folders[id]; ok && f.UserID == userID && f.DeletedAt == nil {
			t := now
			f.DeletedAt = &t
		}
	}
	return nil
}

func (r *fakeFolderRepo) RestoreByIDs(ctx context.Context, userID string, ids []string) error {
	if r.failRestore {
		return errors.New("storage failure")
	}
	for _, id := range ids {
		if f, ok := r.folders[id]; ok && f.UserID == userID && f.DeletedAt != nil {
			f.DeletedAt = nil
		}
	}
	return nil
}

type fakePromptRepo struct {
	prompts map[string]*models.Prompt

	failSoftDelete bool
}

func newFakePromptRepo() *fakePromptRepo {
	return &fakePromptRepo{prompts: make(map[string]*models.Prompt)}
}

func copyPrompt(p *models.Prompt) *models.Prompt {
	c := *p
	return &c
}

func (r *fakePromptRepo) add(p *models.Prompt) *models.Prompt {
	r.prompts[p.ID] = copyPrompt(p)
	return p
}

func (r *fakePromptRepo) Create(ctx context.Context, prompt *models.Prompt) error {
	if prompt.ID == "" {
		prompt.ID = fmt.Sprintf("prompt-%d", len(r.prompts)+1)
	}
	r.prompts[prompt.ID] = copyPrompt(prompt)
	return nil
}

func (r *fakePromptRepo) GetByID(ctx context.Context, id string) (*models.Prompt, error) {
	p, ok := r.prompts[id]
	if !ok || p.DeletedAt != nil {
		return nil, fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
	}
	return copyPrompt(p), nil
}

func (r *fakePromptRepo) UpdateFolderRef(ctx context.Context, id string, folderID *string) error {
	p, ok := r.prompts[id]
	if !ok || p.DeletedAt != nil {
		return fmt.Errorf("prompt %s: %w", id, domain.ErrNotFound)
	}
	p.FolderID = folderID
	p.UpdatedAt = time.Now()
	return nil
}

func (r *fakePromptRepo) ListByFolder(ctx context.Context, userID string, folderID *string) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, p := range r.prompts {
		if p.UserID == userID && p.DeletedAt == nil && sameParent(p.FolderID, folderID) {
			out = append(out, *copyPrompt(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePromptRepo) SoftDeleteByFolderIDs(ctx context.Context, userID string, folderIDs []string) error {
	if r.failSoftDelete {
		return errors.New("storage failure")
	}
	folders := make(map[string]bool, len(folderIDs))
	for _, id := range folderIDs {
		folders[id] = true
	}
	now := time.Now()
	for _, p := range r.prompts {
		if p.UserID == userID && p.DeletedAt == nil && p.FolderID != nil && folders[*p.FolderID] {
			t := now
			p.DeletedAt = &t
		}
	}
	return nil
}

func (r *fakePromptRepo) CountByFolder(ctx context.Context, userID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range r.prompts {
		if p.UserID == userID && p.DeletedAt == nil && p.FolderID != nil {
			counts[*p.FolderID]++
		}
	}
	return counts, nil
}

// fakeTxManager emulates transactional rollback by snapshotting both
// fakes before running fn and restoring them when fn fails.
type fakeTxManager struct {
	folders *fakeFolderRepo
	prompts *fakePromptRepo
}

func (tm *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	folderSnap := make(map[string]*models.Folder, len(tm.folders.folders))
	for id, f := range tm.folders.folders {
		folderSnap[id] = copyFolder(f)
	}
	promptSnap := make(map[string]*models.Prompt, len(tm.prompts.prompts))
	for id, p := range tm.prompts.prompts {
		promptSnap[id] = copyPrompt(p)
	}

	if err := fn(ctx); err != nil {
		tm.folders.folders = folderSnap
		tm.prompts.prompts = promptSnap
		return err
	}
	return nil
}

type testEnv struct {
	folders *fakeFolderRepo
	prompts *fakePromptRepo
	tx      *fakeTxManager
}

func newTestEnv() *testEnv {
	folders := newFakeFolderRepo()
	prompts := newFakePromptRepo()
	return &testEnv{
		folders: folders,
		prompts: prompts,
		tx:      &fakeTxManager{folders: folders, prompts: prompts},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func (e *testEnv) folder(id, userID string, parentID *string, position int) *models.Folder {
	return e.folders.add(&models.Folder{
		ID:        id,
		UserID:    userID,
		ParentID:  parentID,
		Name:      id,
		Position:  position,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}

func (e *testEnv) deletedFolder(id, userID string, parentID *string, position int) *models.Folder {
	f := e.folder(id, userID, parentID, position)
	e.folders.folders[id].DeletedAt = timePtr(time.Now())
	return f
}

func (e *testEnv) prompt(id, userID string, folderID *string) *models.Prompt {
	return e.prompts.add(&models.Prompt{
		ID:        id,
		UserID:    userID,
		FolderID:  folderID,
		Title:     id,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
}
