package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Bamboo Toothbrush", Price: decimal.RequireFromString("4.50"), Category: "bamboo", Stock: 10, IsAvailable: true, CreatedAt: time.Now()},
		{ID: "P002", Name: "Steel Bottle", Price: decimal.RequireFromString("20.00"), Category: "kitchen", Stock: 3, IsAvailable: true, CreatedAt: time.Now()},
	}
}

func TestCatalogService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	products := testProducts()

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.Product
		mockError      error
		expectError    bool
	}{
		{name: "Success with valid pagination", limit: 10, offset: 0, expectedLimit: 10, mockReturn: products},
		{name: "Zero limit defaults to 10", limit: 0, expectedLimit: 10, mockReturn: products},
		{name: "Negative limit defaults to 10", limit: -5, expectedLimit: 10, mockReturn: products},
		{name: "Limit exceeding max caps at 100", limit: 200, expectedLimit: 100, mockReturn: products},
		{name: "Negative offset defaults to 0", limit: 10, offset: -10, expectedLimit: 10, mockReturn: products},
		{name: "Repository error", limit: 10, expectedLimit: 10, mockError: errors.New("database error"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewCatalogService(mockRepo, logger)

			mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).
				Return(tt.mockReturn, tt.mockError)

			got, err := service.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrDependency)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, got)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	product := &testProducts()[0]

	tests := []struct {
		name        string
		productID   string
		mockReturn  *model.Product
		mockError   error
		expectedErr error
	}{
		{name: "Success", productID: "P001", mockReturn: product},
		{name: "Product not found", productID: "P999", expectedErr: model.ErrProductNotFound},
		{name: "Empty product ID", productID: "", expectedErr: model.ErrValidation},
		{name: "Repository error", productID: "P001", mockError: errors.New("database error"), expectedErr: model.ErrDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			service := NewCatalogService(mockRepo, logger)

			if tt.productID != "" {
				mockRepo.On("GetByID", ctx, tt.productID).Return(tt.mockReturn, tt.mockError)
			}

			got, err := service.GetByID(ctx, tt.productID)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, got)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetByIDs(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	products := testProducts()

	t.Run("Empty ID list returns empty result", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewCatalogService(mockRepo, logger)

		got, err := service.GetByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, got)
		mockRepo.AssertNotCalled(t, "GetByIDs", ctx, nil)
	})

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewCatalogService(mockRepo, logger)
		mockRepo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(products, nil)

		got, err := service.GetByIDs(ctx, []string{"P001", "P002"})

		require.NoError(t, err)
		assert.Equal(t, products, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		service := NewCatalogService(mockRepo, logger)
		mockRepo.On("GetByIDs", ctx, []string{"P001"}).Return(nil, errors.New("database error"))

		got, err := service.GetByIDs(ctx, []string{"P001"})

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrDependency)
		assert.Nil(t, got)
	})
}
