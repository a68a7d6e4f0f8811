package database

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/repository"
	"github.com/yeremiapane/honda-dealer/services"
	"github.com/yeremiapane/honda-dealer/utils"
)

//go:embed seed/motorcycles.yaml
var defaultCatalog []byte

type catalogFile struct {
	Motorcycles []models.Motorcycle `yaml:"motorcycles"`
}

// ParseCatalog decodes a catalog seed document and validates every entry.
func ParseCatalog(data []byte) ([]models.Motorcycle, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog seed: %w", err)
	}
	for i, m := range file.Motorcycles {
		if m.Name == "" || m.Price <= 0 || !m.Category.Valid() {
			return nil, fmt.Errorf("invalid catalog seed entry %d (%q)", i, m.Name)
		}
	}
	return file.Motorcycles, nil
}

// LoadCatalog reads path, or the embedded catalog when path is empty.
func LoadCatalog(path string) ([]models.Motorcycle, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return ParseCatalog(data)
}

// SeedCatalog inserts or updates the catalog by motorcycle name.
func SeedCatalog(ctx context.Context, repo *repository.MotorcycleRepository, list []models.Motorcycle) (created, updated int, err error) {
	for i := range list {
		isNew, err := repo.UpsertByName(ctx, &list[i])
		if err != nil {
			return created, updated, fmt.Errorf("failed to seed %s: %w", list[i].Name, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"created": created,
		"updated": updated,
	}).Info("catalog seeded")
	return created, updated, nil
}

// SeedAdmin creates the admin account when credentials are configured.
func SeedAdmin(ctx context.Context, users *services.UserService, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	admin, err := users.EnsureAdmin(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	utils.InfoLogger.WithField("user_id", admin.ID).Info("admin account ready")
	return nil
}
