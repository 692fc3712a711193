// Package pubsub wraps the Pub/Sub API for push subscription management.
package pubsub

import (
	"context"

	pubsubapi "google.golang.org/api/pubsub/v1"
)

type Service struct {
	Client *pubsubapi.Service
}

func FromClient(client *pubsubapi.Service) Service {
	return Service{
		Client: client,
	}
}

// Inspect fetches a subscription by its fully qualified name
// (projects/{project}/subscriptions/{subscription}).
func (s Service) Inspect(ctx context.Context, name string) (*pubsubapi.Subscription, error) {
	return s.Client.Projects.Subscriptions.Get(name).Context(ctx).Do()
}

func (s Service) Create(ctx context.Context, name string, subscription *pubsubapi.Subscription) (*pubsubapi.Subscription, error) {
	return s.Client.Projects.Subscriptions.Create(name, subscription).Context(ctx).Do()
}

func (s Service) Patch(ctx context.Context, name string, subscription *pubsubapi.Subscription, updateMask string) (*pubsubapi.Subscription, error) {
	return s.Client.Projects.Subscriptions.Patch(name, &pubsubapi.UpdateSubscriptionRequest{
		Subscription: subscription,
		UpdateMask:   updateMask,
	}).Context(ctx).Do()
}

func (s Service) Delete(ctx context.Context, name string) error {
	_, err := s.Client.Projects.Subscriptions.Delete(name).Context(ctx).Do()
	return err
}
