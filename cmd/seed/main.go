package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"promptstash/internal/config"
	"promptstash/internal/domain/models"
	"promptstash/internal/domain/repositories"
	"promptstash/internal/repository/postgres"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// seedFile describes a development fixture: a folder tree with prompts.
type seedFile struct {
	User    string       `yaml:"user"`
	Folders []seedFolder `yaml:"folders"`
	Prompts []string     `yaml:"prompts"` // unfoldered prompts
}

type seedFolder struct {
	Name     string       `yaml:"name"`
	Color    *string      `yaml:"color"`
	Emoji    *string      `yaml:"emoji"`
	Children []seedFolder `yaml:"children"`
	Prompts  []string     `yaml:"prompts"`
}

func main() {
	file := flag.String("file", "seed/dev.yaml", "seed fixture to load")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}
	if seed.User == "" {
		log.Fatalf("Seed file must name a user")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	promptRepo := postgres.NewPromptRepository(repoConfig)

	s := seeder{
		folderRepo: folderRepo,
		promptRepo: promptRepo,
		userID:     seed.User,
		logger:     logger,
	}

	for i, folder := range seed.Folders {
		if err := s.createFolder(ctx, folder, nil, i+1); err != nil {
			log.Fatalf("Failed to seed folder %q: %v", folder.Name, err)
		}
	}
	for _, title := range seed.Prompts {
		if err := s.createPrompt(ctx, title, nil); err != nil {
			log.Fatalf("Failed to seed prompt %q: %v", title, err)
		}
	}

	logger.Info("seed complete", "user", seed.User, "folders", s.folders, "prompts", s.prompts)
}

type seeder struct {
	folderRepo repositories.FolderRepository
	promptRepo repositories.PromptRepository
	userID     string
	logger     *slog.Logger

	folders int
	prompts int
}

func (s *seeder) createFolder(ctx context.Context, def seedFolder, parentID *string, position int) error {
	if def.Name == "" {
		return fmt.Errorf("folder name is required")
	}

	now := time.Now()
	folder := &models.Folder{
		UserID:    s.userID,
		ParentID:  parentID,
		Name:      def.Name,
		Color:     def.Color,
		Emoji:     def.Emoji,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return err
	}
	s.folders++
	s.logger.Info("folder seeded", "name", folder.Name, "id", folder.ID)

	for _, title := range def.Prompts {
		if err := s.createPrompt(ctx, title, &folder.ID); err != nil {
			return err
		}
	}
	for i, child := range def.Children {
		if err := s.createFolder(ctx, child, &folder.ID, i+1); err != nil {
			return err
		}
	}

	return nil
}

func (s *seeder) createPrompt(ctx context.Context, title string, folderID *string) error {
	if title == "" || len(title) > config.MaxPromptTitleLength {
		return fmt.Errorf("prompt title must be 1-%d characters", config.MaxPromptTitleLength)
	}

	now := time.Now()
	prompt := &models.Prompt{
		UserID:    s.userID,
		FolderID:  folderID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.promptRepo.Create(ctx, prompt); err != nil {
		return err
	}
	s.prompts++
	return nil
}
