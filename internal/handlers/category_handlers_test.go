package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"smartinventory/internal/models"
	"smartinventory/internal/repositories"
	"smartinventory/internal/services"
	"smartinventory/pkg/logger"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, req *services.CategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id int64, req *services.CategoryRequest) (*models.Category, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryService) List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

type CategoryHandlersTestSuite struct {
	suite.Suite
	service *MockCategoryService
	echo    *echo.Echo
}

func (suite *CategoryHandlersTestSuite) SetupTest() {
	logger.SetNopLogger()
	suite.service = &MockCategoryService{}
	suite.service.Test(suite.T())

	h := NewCategoryHandlers(suite.service, Options{})
	suite.echo = echo.New()
	g := suite.echo.Group("/api/categories")
	g.GET("", h.ListCategories)
	g.POST("", h.CreateCategory)
	g.GET("/:id", h.GetCategory)
	g.PUT("/:id", h.UpdateCategory)
	g.DELETE("/:id", h.DeleteCategory)
}

func (suite *CategoryHandlersTestSuite) TearDownTest() {
	suite.service.AssertExpectations(suite.T())
}

func TestCategoryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryHandlersTestSuite))
}

func (suite *CategoryHandlersTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)
	return rec
}

func (suite *CategoryHandlersTestSuite) TestListCategories() {
	suite.service.On("List", mock.Anything, models.CategoryFilter{Search: "tea", Limit: 200, Offset: 10}).
		Return([]*models.Category{{CategoryID: 1, CategoryName: "Tea"}}, nil).Once()

	rec := suite.do(http.MethodGet, "/api/categories?search=tea&limit=500&offset=10", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"CategoryName":"Tea"`)
	suite.Contains(rec.Body.String(), `"limit":200`)
}

func (suite *CategoryHandlersTestSuite) TestListCategories_NegativeOffset() {
	rec := suite.do(http.MethodGet, "/api/categories?offset=-1", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), `"success":false`)
}

func (suite *CategoryHandlersTestSuite) TestGetCategory_NotFound() {
	suite.service.On("GetByID", mock.Anything, int64(9)).Return(nil, repositories.ErrCategoryNotFound).Once()

	rec := suite.do(http.MethodGet, "/api/categories/9", "")
	suite.Equal(http.StatusNotFound, rec.Code)
	suite.JSONEq(`{"success":false,"message":"Category not found","error":"category not found"}`, rec.Body.String())
}

func (suite *CategoryHandlersTestSuite) TestGetCategory_InvalidID() {
	rec := suite.do(http.MethodGet, "/api/categories/abc", "")
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *CategoryHandlersTestSuite) TestCreateCategory() {
	suite.service.On("Create", mock.Anything, mock.MatchedBy(func(r *services.CategoryRequest) bool {
		return r.CategoryName == "Snacks" && r.Description != nil && *r.Description == "Chips"
	})).Return(&models.Category{CategoryID: 4, CategoryName: "Snacks"}, nil).Once()

	rec := suite.do(http.MethodPost, "/api/categories", `{"CategoryName":"Snacks","Description":"Chips"}`)
	suite.Equal(http.StatusCreated, rec.Code)
	suite.Contains(rec.Body.String(), `"CategoryID":4`)
}

func (suite *CategoryHandlersTestSuite) TestCreateCategory_Invalid() {
	suite.service.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.Join(services.ErrInvalidCategory, errors.New("CategoryName is required"))).Once()

	rec := suite.do(http.MethodPost, "/api/categories", `{"CategoryName":""}`)
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "CategoryName is required")
}

func (suite *CategoryHandlersTestSuite) TestCreateCategory_Duplicate() {
	suite.service.On("Create", mock.Anything, mock.Anything).Return(nil, repositories.ErrDuplicateCategory).Once()

	rec := suite.do(http.MethodPost, "/api/categories", `{"CategoryName":"Snacks"}`)
	suite.Equal(http.StatusConflict, rec.Code)
}

func (suite *CategoryHandlersTestSuite) TestUpdateCategory() {
	suite.service.On("Update", mock.Anything, int64(4), mock.Anything).
		Return(&models.Category{CategoryID: 4, CategoryName: "Crisps"}, nil).Once()

	rec := suite.do(http.MethodPut, "/api/categories/4", `{"CategoryName":"Crisps"}`)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"Crisps"`)
}

func (suite *CategoryHandlersTestSuite) TestDeleteCategory_InUse() {
	suite.service.On("Delete", mock.Anything, int64(4)).Return(repositories.ErrCategoryInUse).Once()

	rec := suite.do(http.MethodDelete, "/api/categories/4", "")
	suite.Equal(http.StatusConflict, rec.Code)
	suite.Contains(rec.Body.String(), "referenced by products")
}

func (suite *CategoryHandlersTestSuite) TestDeleteCategory_ServerErrorIsMasked() {
	suite.service.On("Delete", mock.Anything, int64(4)).Return(errors.New("relation \"categories\" does not exist")).Once()

	rec := suite.do(http.MethodDelete, "/api/categories/4", "")
	suite.Equal(http.StatusInternalServerError, rec.Code)
	assert.NotContains(suite.T(), rec.Body.String(), "relation")
}
