package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
	pubsubapi "google.golang.org/api/pubsub/v1"
)

// MockPubSubService is a mock of the subscription convention's PubSubService interface
type MockPubSubService struct {
	mock.Mock
}

func (m *MockPubSubService) Inspect(ctx context.Context, name string) (*pubsubapi.Subscription, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(*pubsubapi.Subscription), args.Error(1)
}

func (m *MockPubSubService) Create(ctx context.Context, name string, subscription *pubsubapi.Subscription) (*pubsubapi.Subscription, error) {
	args := m.Called(ctx, name, subscription)
	return args.Get(0).(*pubsubapi.Subscription), args.Error(1)
}

func (m *MockPubSubService) Patch(ctx context.Context, name string, subscription *pubsubapi.Subscription, updateMask string) (*pubsubapi.Subscription, error) {
	args := m.Called(ctx, name, subscription, updateMask)
	return args.Get(0).(*pubsubapi.Subscription), args.Error(1)
}

func (m *MockPubSubService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
