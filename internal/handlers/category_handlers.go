package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartinventory/internal/common"
	"smartinventory/internal/models"
	"smartinventory/internal/repositories"
	"smartinventory/internal/services"
	"smartinventory/pkg/logger"
)

const (
	defaultCategoryPageSize = 50
	maxCategoryPageSize     = 200
)

// CategoryHandlers handles category administration requests.
type CategoryHandlers struct {
	service services.CategoryService
	opts    Options
}

// NewCategoryHandlers creates a new category handlers instance. opts decides
// whether server errors carry their cause.
func NewCategoryHandlers(service services.CategoryService, opts Options) *CategoryHandlers {
	return &CategoryHandlers{service: service, opts: opts}
}

// ListCategoriesRequest represents query parameters for listing categories
type ListCategoriesRequest struct {
	Search string `query:"search"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// ListCategories handles GET /api/categories.
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	var req ListCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset, defaultCategoryPageSize, maxCategoryPageSize)
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	categories, err := h.service.List(c.Request().Context(), models.CategoryFilter{
		Search: req.Search,
		Limit:  uint64(limit),
		Offset: uint64(offset),
	})
	if err != nil {
		return h.fail(c, "Failed to list categories", err)
	}

	return common.SendSuccess(c, http.StatusOK, "Categories fetched successfully", map[string]any{
		"categories": categories,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetCategory handles GET /api/categories/:id.
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	category, err := h.service.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "Failed to fetch category", err)
	}
	return common.SendSuccess(c, http.StatusOK, "Category fetched successfully", category)
}

// CreateCategory handles POST /api/categories.
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req services.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "invalid request format")
	}

	category, err := h.service.Create(c.Request().Context(), &req)
	if err != nil {
		return h.fail(c, "Failed to create category", err)
	}
	return common.SendSuccess(c, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory handles PUT /api/categories/:id.
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	var req services.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "invalid request format")
	}

	category, err := h.service.Update(c.Request().Context(), id, &req)
	if err != nil {
		return h.fail(c, "Failed to update category", err)
	}
	return common.SendSuccess(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /api/categories/:id.
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	id, err := common.ParseID(c, "id")
	if err != nil {
		return common.SendValidationError(c, err.Error())
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "Failed to delete category", err)
	}
	return common.SendSuccess(c, http.StatusOK, "Category deleted successfully", nil)
}

// fail maps service errors onto the error envelope.
func (h *CategoryHandlers) fail(c echo.Context, message string, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidCategory):
		return common.SendValidationError(c, err.Error())
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return common.SendNotFoundError(c, "Category")
	case errors.Is(err, repositories.ErrDuplicateCategory):
		return common.SendError(c, http.StatusConflict, message, repositories.ErrDuplicateCategory.Error())
	case errors.Is(err, repositories.ErrCategoryInUse):
		return common.SendError(c, http.StatusConflict, message, repositories.ErrCategoryInUse.Error())
	}

	logger.L().Error(message, zap.Error(err))
	return common.SendServerError(c, message, err, h.opts.ExposeErrors)
}
