package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/utils"
)

const catalogCacheKey = "catalog:motorcycles"

// CachedCatalog serves the motorcycle list from a cache in front of the repository.
// Cache failures fall through to the repository.
type CachedCatalog struct {
	repo  MotorcycleRepository
	cache Cache
	ttl   time.Duration
}

func NewCachedCatalog(repo MotorcycleRepository, cache Cache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{repo: repo, cache: cache, ttl: ttl}
}

func (c *CachedCatalog) ListMotorcycles(ctx context.Context) ([]models.Motorcycle, error) {
	if c.cache != nil {
		raw, ok, err := c.cache.Get(ctx, catalogCacheKey)
		if err != nil {
			utils.ErrorLogger.Errorf("catalog cache read failed: %v", err)
		}
		if ok {
			var list []models.Motorcycle
			if err := json.Unmarshal(raw, &list); err == nil {
				return list, nil
			}
		}
	}

	list, err := c.repo.ListMotorcycles(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if raw, err := json.Marshal(list); err == nil {
			if err := c.cache.Set(ctx, catalogCacheKey, raw, c.ttl); err != nil {
				utils.ErrorLogger.Errorf("catalog cache write failed: %v", err)
			}
		}
	}
	return list, nil
}

func (c *CachedCatalog) FindMotorcycle(ctx context.Context, id uint) (*models.Motorcycle, error) {
	return c.repo.FindMotorcycle(ctx, id)
}

// Invalidate drops the cached list.
func (c *CachedCatalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, catalogCacheKey); err != nil {
		utils.ErrorLogger.Errorf("catalog cache invalidation failed: %v", err)
	}
}

// CatalogService is the admin side of the motorcycle catalog.
type CatalogService struct {
	catalog *CachedCatalog
	repo    MotorcycleRepository
	files   FileStore
	events  Emitter
}

func NewCatalogService(catalog *CachedCatalog, repo MotorcycleRepository, files FileStore, events Emitter) *CatalogService {
	return &CatalogService{catalog: catalog, repo: repo, files: files, events: events}
}

// MotorcycleInput carries the editable catalog fields.
type MotorcycleInput struct {
	Name      string                    `json:"name" form:"name"`
	Category  models.MotorcycleCategory `json:"category" form:"category"`
	Price     int64                     `json:"price" form:"price"`
	Specs     string                    `json:"specs" form:"specs"`
	Available *bool                     `json:"available" form:"available"`
}

func (in MotorcycleInput) validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "wajib diisi"})
	}
	if !in.Category.Valid() {
		errs = append(errs, &ValidationError{Field: "category", Message: "must be sport, scooter or adventure"})
	}
	if in.Price <= 0 {
		errs = append(errs, &ValidationError{Field: "price", Message: "must be positive"})
	}
	return errs.orNil()
}

func (s *CatalogService) List(ctx context.Context) ([]models.Motorcycle, error) {
	return s.catalog.ListMotorcycles(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Motorcycle, error) {
	return s.repo.FindMotorcycle(ctx, id)
}

// Create adds a motorcycle. image is optional.
func (s *CatalogService) Create(ctx context.Context, session Session, in MotorcycleInput, image *UploadFile) (*models.Motorcycle, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	m := &models.Motorcycle{
		Name:      strings.TrimSpace(in.Name),
		Category:  in.Category,
		Price:     in.Price,
		Specs:     in.Specs,
		Available: in.Available == nil || *in.Available,
	}
	if image != nil {
		ref, err := s.saveImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		m.Image = ref
	}
	if err := s.repo.CreateMotorcycle(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create motorcycle: %w", err)
	}
	s.changed(ctx, m)
	return m, nil
}

// Update replaces the editable fields. Existing orders keep their price snapshot.
func (s *CatalogService) Update(ctx context.Context, session Session, id uint, in MotorcycleInput, image *UploadFile) (*models.Motorcycle, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	m, err := s.repo.FindMotorcycle(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Name = strings.TrimSpace(in.Name)
	m.Category = in.Category
	m.Price = in.Price
	m.Specs = in.Specs
	if in.Available != nil {
		m.Available = *in.Available
	}

	oldImage := m.Image
	if image != nil {
		ref, err := s.saveImage(ctx, *image)
		if err != nil {
			return nil, err
		}
		m.Image = ref
	}
	if err := s.repo.UpdateMotorcycle(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update motorcycle: %w", err)
	}
	if image != nil && oldImage != "" {
		if err := s.files.Remove(oldImage); err != nil {
			utils.ErrorLogger.Errorf("failed to remove old image %s: %v", oldImage, err)
		}
	}
	s.changed(ctx, m)
	return m, nil
}

func (s *CatalogService) Delete(ctx context.Context, session Session, id uint) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	m, err := s.repo.FindMotorcycle(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteMotorcycle(ctx, id); err != nil {
		return fmt.Errorf("failed to delete motorcycle: %w", err)
	}
	if m.Image != "" {
		if err := s.files.Remove(m.Image); err != nil {
			utils.ErrorLogger.Errorf("failed to remove image %s: %v", m.Image, err)
		}
	}
	s.changed(ctx, m)
	return nil
}

func (s *CatalogService) saveImage(ctx context.Context, image UploadFile) (string, error) {
	if err := ValidateImageFile(image); err != nil {
		return "", err
	}
	ref, err := s.files.Save(ctx, "motorcycles", image)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return ref, nil
}

func (s *CatalogService) changed(ctx context.Context, m *models.Motorcycle) {
	s.catalog.Invalidate(ctx)
	s.events.emit(ctx, Event{Type: EventCatalogChanged, Data: m})
}
