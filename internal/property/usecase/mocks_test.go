package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/estate-manager/property-service/internal/salelog"
)

type MockPropertyRepository struct{ mock.Mock }

func (m *MockPropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPropertyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPropertyRepository) FindByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyRepository) FindByFilter(ctx context.Context, f domain.Filter) ([]*domain.Property, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.Property), args.Get(1).(int64), args.Error(2)
}
func (m *MockPropertyRepository) FindByStatus(ctx context.Context, status domain.PropertyStatus) ([]*domain.Property, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Property), args.Error(1)
}
func (m *MockPropertyRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

type MockMediaStorage struct{ mock.Mock }

func (m *MockMediaStorage) Upload(ctx context.Context, propertyID, fileName string, data []byte) (*domain.MediaObject, error) {
	args := m.Called(ctx, propertyID, fileName, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaObject), args.Error(1)
}
func (m *MockMediaStorage) Delete(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
func (m *MockMediaStorage) Variants(publicID string) domain.MediaVariants {
	args := m.Called(publicID)
	return args.Get(0).(domain.MediaVariants)
}

type MockPropertyCache struct{ mock.Mock }

func (m *MockPropertyCache) Get(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyCache) Set(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPropertyCache) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockSaleLog struct{ mock.Mock }

func (m *MockSaleLog) Append(e salelog.Entry) error {
	args := m.Called(e)
	return args.Error(0)
}
func (m *MockSaleLog) StatsSince(days int) (*salelog.Stats, error) {
	args := m.Called(days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*salelog.Stats), args.Error(1)
}
