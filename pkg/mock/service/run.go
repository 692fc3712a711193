package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	runapi "google.golang.org/api/run/v1"
)

// MockRunService is a mock of the deployment convention's RunService interface
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Inspect(ctx context.Context, name string) (*runapi.Service, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*runapi.Service), args.Error(1)
}

func (m *MockRunService) List(ctx context.Context, parent, labelSelector string) ([]*runapi.Service, error) {
	args := m.Called(ctx, parent, labelSelector)
	return args.Get(0).([]*runapi.Service), args.Error(1)
}

func (m *MockRunService) Create(ctx context.Context, parent string, service *runapi.Service) (*runapi.Service, error) {
	args := m.Called(ctx, parent, service)
	return args.Get(0).(*runapi.Service), args.Error(1)
}

func (m *MockRunService) Replace(ctx context.Context, name string, service *runapi.Service) (*runapi.Service, error) {
	args := m.Called(ctx, name, service)
	return args.Get(0).(*runapi.Service), args.Error(1)
}

func (m *MockRunService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockRunService) SetInvokerPolicy(ctx context.Context, resource string, members []string) error {
	args := m.Called(ctx, resource, members)
	return args.Error(0)
}
