package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"smartinventory/internal/models"
	"smartinventory/internal/repositories"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCategory(ctx context.Context, categoryID int64) (*models.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCacheService) SetCategory(ctx context.Context, category *models.Category, ttl time.Duration) error {
	args := m.Called(ctx, category, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCategory(ctx context.Context, categoryID int64) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) Close() error {
	args := m.Called()
	return args.Error(0)
}

type CategoryServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockCategoryRepository
	mockCache *MockCacheService
	service   CategoryService
	context   context.Context
}

func (suite *CategoryServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockCategoryRepository{}
	suite.mockCache = &MockCacheService{}
	suite.mockRepo.Test(suite.T())
	suite.mockCache.Test(suite.T())

	suite.service = NewCategoryService(suite.mockRepo, suite.mockCache)
	suite.context = context.Background()
}

func (suite *CategoryServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func strPtr(s string) *string { return &s }

func (suite *CategoryServiceTestSuite) TestCreate_Success() {
	req := &CategoryRequest{CategoryName: "  Beverages ", Description: strPtr("Drinks")}

	suite.mockRepo.On("Create", suite.context, mock.AnythingOfType("*models.Category")).Return(nil).Run(func(args mock.Arguments) {
		c := args.Get(1).(*models.Category)
		assert.Equal(suite.T(), "Beverages", c.CategoryName)
		assert.Equal(suite.T(), "Drinks", c.Description.String)
		c.CategoryID = 3
	}).Once()

	category, err := suite.service.Create(suite.context, req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), category.CategoryID)
}

func (suite *CategoryServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.context, &CategoryRequest{CategoryName: "   "})
	assert.ErrorIs(suite.T(), err, ErrInvalidCategory)

	_, err = suite.service.Create(suite.context, &CategoryRequest{CategoryName: strings.Repeat("x", 101)})
	assert.ErrorIs(suite.T(), err, ErrInvalidCategory)
}

func (suite *CategoryServiceTestSuite) TestGetByID_CacheHit() {
	cached := &models.Category{CategoryID: 5, CategoryName: "Snacks"}
	suite.mockCache.On("GetCategory", suite.context, int64(5)).Return(cached, nil).Once()

	category, err := suite.service.GetByID(suite.context, 5)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), cached, category)
}

func (suite *CategoryServiceTestSuite) TestGetByID_CacheMissPopulatesCache() {
	stored := &models.Category{CategoryID: 5, CategoryName: "Snacks"}
	suite.mockCache.On("GetCategory", suite.context, int64(5)).Return(nil, nil).Once()
	suite.mockRepo.On("GetByID", suite.context, int64(5)).Return(stored, nil).Once()
	suite.mockCache.On("SetCategory", suite.context, stored, categoryCacheTTL).Return(nil).Once()

	category, err := suite.service.GetByID(suite.context, 5)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Snacks", category.CategoryName)
}

func (suite *CategoryServiceTestSuite) TestGetByID_CacheErrorsDoNotFail() {
	stored := &models.Category{CategoryID: 5}
	suite.mockCache.On("GetCategory", suite.context, int64(5)).Return(nil, errors.New("redis down")).Once()
	suite.mockRepo.On("GetByID", suite.context, int64(5)).Return(stored, nil).Once()
	suite.mockCache.On("SetCategory", suite.context, stored, categoryCacheTTL).Return(errors.New("redis down")).Once()

	category, err := suite.service.GetByID(suite.context, 5)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), stored, category)
}

func (suite *CategoryServiceTestSuite) TestGetByID_NotFound() {
	suite.mockCache.On("GetCategory", suite.context, int64(9)).Return(nil, nil).Once()
	suite.mockRepo.On("GetByID", suite.context, int64(9)).Return(nil, repositories.ErrCategoryNotFound).Once()

	_, err := suite.service.GetByID(suite.context, 9)
	assert.ErrorIs(suite.T(), err, repositories.ErrCategoryNotFound)
}

func (suite *CategoryServiceTestSuite) TestUpdate_InvalidatesCache() {
	updated := &models.Category{CategoryID: 5, CategoryName: "Chips", ProductCount: 2}
	suite.mockRepo.On("Update", suite.context, mock.MatchedBy(func(c *models.Category) bool {
		return c.CategoryID == 5 && c.CategoryName == "Chips" && !c.Description.Valid
	})).Return(nil).Once()
	suite.mockCache.On("DeleteCategory", suite.context, int64(5)).Return(nil).Once()
	suite.mockRepo.On("GetByID", suite.context, int64(5)).Return(updated, nil).Once()

	category, err := suite.service.Update(suite.context, 5, &CategoryRequest{CategoryName: "Chips", Description: strPtr(" ")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), category.ProductCount)
}

func (suite *CategoryServiceTestSuite) TestDelete_InUseKeepsCache() {
	suite.mockRepo.On("Delete", suite.context, int64(5)).Return(repositories.ErrCategoryInUse).Once()

	err := suite.service.Delete(suite.context, 5)
	assert.ErrorIs(suite.T(), err, repositories.ErrCategoryInUse)
}

func (suite *CategoryServiceTestSuite) TestDelete_Success() {
	suite.mockRepo.On("Delete", suite.context, int64(5)).Return(nil).Once()
	suite.mockCache.On("DeleteCategory", suite.context, int64(5)).Return(nil).Once()

	assert.NoError(suite.T(), suite.service.Delete(suite.context, 5))
}

func (suite *CategoryServiceTestSuite) TestList_ClampsLimit() {
	suite.mockRepo.On("List", suite.context, models.CategoryFilter{Search: "tea", Limit: maxCategoryLimit}).
		Return([]*models.Category{}, nil).Once()
	suite.mockRepo.On("List", suite.context, models.CategoryFilter{Limit: defaultCategoryLimit}).
		Return([]*models.Category{}, nil).Once()

	_, err := suite.service.List(suite.context, models.CategoryFilter{Search: "tea", Limit: 10000})
	require.NoError(suite.T(), err)
	_, err = suite.service.List(suite.context, models.CategoryFilter{})
	require.NoError(suite.T(), err)
}
