package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"

	"smartinventory/internal/caching"
	"smartinventory/internal/models"
	"smartinventory/internal/repositories"
	"smartinventory/pkg/logger"
)

const (
	maxCategoryNameLength = 100
	categoryCacheTTL      = 10 * time.Minute
	defaultCategoryLimit  = 50
	maxCategoryLimit      = 200
)

var ErrInvalidCategory = errors.New("invalid category")

// CategoryRequest is the body of create and update calls.
type CategoryRequest struct {
	CategoryName string  `json:"CategoryName"`
	Description  *string `json:"Description"`
}

func (r *CategoryRequest) validate() error {
	name := strings.TrimSpace(r.CategoryName)
	if name == "" {
		return fmt.Errorf("%w: CategoryName is required", ErrInvalidCategory)
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return fmt.Errorf("%w: CategoryName must be at most %d characters", ErrInvalidCategory, maxCategoryNameLength)
	}
	return nil
}

func (r *CategoryRequest) apply(c *models.Category) {
	c.CategoryName = strings.TrimSpace(r.CategoryName)
	c.Description = pgtype.Text{}
	if r.Description != nil {
		if d := strings.TrimSpace(*r.Description); d != "" {
			c.Description = pgtype.Text{String: d, Valid: true}
		}
	}
}

type CategoryService interface {
	Create(ctx context.Context, req *CategoryRequest) (*models.Category, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	Update(ctx context.Context, id int64, req *CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error)
}

type categoryService struct {
	repo  repositories.CategoryRepository
	cache caching.CacheService
}

func NewCategoryService(repo repositories.CategoryRepository, cache caching.CacheService) CategoryService {
	return &categoryService{repo: repo, cache: cache}
}

func (s *categoryService) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	category := &models.Category{}
	req.apply(category)
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	if cached, err := s.cache.GetCategory(ctx, id); cached != nil {
		return cached, nil
	} else if err != nil {
		logger.L().Warn("category cache read failed", logger.Int64("category_id", id), logger.ErrorF(err))
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCategory(ctx, category, categoryCacheTTL); err != nil {
		logger.L().Warn("category cache write failed", logger.Int64("category_id", id), logger.ErrorF(err))
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req *CategoryRequest) (*models.Category, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	category := &models.Category{CategoryID: id}
	req.apply(category)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	return s.repo.GetByID(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *categoryService) List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	if filter.Limit == 0 {
		filter.Limit = defaultCategoryLimit
	}
	if filter.Limit > maxCategoryLimit {
		filter.Limit = maxCategoryLimit
	}
	return s.repo.List(ctx, filter)
}

func (s *categoryService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.DeleteCategory(ctx, id); err != nil {
		logger.L().Warn("category cache invalidation failed", logger.Int64("category_id", id), logger.ErrorF(err))
	}
}
