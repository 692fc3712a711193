package subscription

import (
	"context"
	"testing"

	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/convention/deployment"
	"github.com/groundcrew/runway/pkg/convention/manifest"
	servicemock "github.com/groundcrew/runway/pkg/mock/service"
	umweltmock "github.com/groundcrew/runway/pkg/mock/umwelt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/api/googleapi"
	pubsubapi "google.golang.org/api/pubsub/v1"
	runapi "google.golang.org/api/run/v1"
)

func mockManifest() manifest.Manifest {
	return manifest.Manifest{
		Name:           "upload-service",
		Image:          "gcr.io/mock-project/upload-service@sha256:abc123",
		Port:           8000,
		ServiceAccount: "runner@mock-project.iam.gserviceaccount.com",
		Traffic:        []manifest.Traffic{{LatestRevision: true, Percent: 100}},
		Subscription: &manifest.Subscription{
			Topic:              "queue-topic",
			Path:               "/process_task",
			AckDeadlineSeconds: 10,
		},
	}
}

func mockDeployment(url string) deployment.Deployment {
	return deployment.Deployment{
		Service: runapi.Service{
			Metadata: &runapi.ObjectMeta{Name: "upload-service"},
			Status:   &runapi.ServiceStatus{Url: url},
		},
	}
}

func desiredSubscription() *pubsubapi.Subscription {
	return &pubsubapi.Subscription{
		Topic:              "projects/mock-project/topics/queue-topic",
		AckDeadlineSeconds: 10,
		PushConfig: &pubsubapi.PushConfig{
			PushEndpoint: "https://upload-service-abc123-uc.a.run.app/process_task",
			OidcToken: &pubsubapi.OidcToken{
				ServiceAccountEmail: "runner@mock-project.iam.gserviceaccount.com",
			},
		},
	}
}

func notFound() error {
	return &googleapi.Error{Code: 404, Message: "subscription not found"}
}

func TestSubscription(t *testing.T) {
	ctx := context.Background()

	gitMock := umweltmock.MockGit("mockOrg", "mockRepo", "main")
	cfg := config.FromHere(umweltmock.FromCwd("mockRepo/upload-service", gitMock, "upload-service"))

	subscriptionPath := "projects/mock-project/subscriptions/upload-service-push"
	serviceUrl := "https://upload-service-abc123-uc.a.run.app"

	tests := []struct {
		name  string
		setup func(*servicemock.MockPubSubService)
		test  func(*testing.T, Convention, *servicemock.MockPubSubService)
	}{
		{
			name: "convention.Converge without a declared topic removes any stale subscription.",
			setup: func(mps *servicemock.MockPubSubService) {
				mps.On("Delete", mock.Anything, subscriptionPath).
					Return(notFound())
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				plain := mockManifest()
				plain.Subscription = nil

				assert.NoError(t, c.Converge(ctx, mockDeployment(serviceUrl), plain))
				mps.AssertNotCalled(t, "Inspect", mock.Anything, mock.Anything)
				mps.AssertCalled(t, "Delete", mock.Anything, subscriptionPath)
			},
		},
		{
			name:  "convention.Converge refuses a deployment without a resolved url.",
			setup: func(mps *servicemock.MockPubSubService) {},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				err := c.Converge(ctx, mockDeployment(""), mockManifest())

				assert.Error(t, err)
				assert.Contains(t, err.Error(), "no resolved url")
			},
		},
		{
			name: "convention.Converge creates the subscription when only defined.",
			setup: func(mps *servicemock.MockPubSubService) {
				mps.On("Inspect", mock.Anything, subscriptionPath).
					Return((*pubsubapi.Subscription)(nil), notFound())
				mps.On("Create", mock.Anything, subscriptionPath, desiredSubscription()).
					Return(desiredSubscription(), nil)
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				assert.NoError(t, c.Converge(ctx, mockDeployment(serviceUrl), mockManifest()))
				mps.AssertCalled(t, "Create", mock.Anything, subscriptionPath, desiredSubscription())
			},
		},
		{
			name: "convention.Converge leaves a converged subscription alone.",
			setup: func(mps *servicemock.MockPubSubService) {
				mps.On("Inspect", mock.Anything, subscriptionPath).
					Return(desiredSubscription(), nil)
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				assert.NoError(t, c.Converge(ctx, mockDeployment(serviceUrl), mockManifest()))
				mps.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				mps.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "convention.Converge patches a drifted push endpoint.",
			setup: func(mps *servicemock.MockPubSubService) {
				stale := desiredSubscription()
				stale.PushConfig.PushEndpoint = "https://old-endpoint.example.com/process_task"

				mps.On("Inspect", mock.Anything, subscriptionPath).
					Return(stale, nil)
				mps.On("Patch", mock.Anything, subscriptionPath, desiredSubscription(), "push_config,ack_deadline_seconds").
					Return(desiredSubscription(), nil)
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				assert.NoError(t, c.Converge(ctx, mockDeployment(serviceUrl), mockManifest()))
				mps.AssertCalled(t, "Patch", mock.Anything, subscriptionPath, desiredSubscription(), "push_config,ack_deadline_seconds")
			},
		},
		{
			name: "convention.Converge refuses to move a subscription across topics.",
			setup: func(mps *servicemock.MockPubSubService) {
				foreign := desiredSubscription()
				foreign.Topic = "projects/mock-project/topics/other-topic"

				mps.On("Inspect", mock.Anything, subscriptionPath).
					Return(foreign, nil)
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				err := c.Converge(ctx, mockDeployment(serviceUrl), mockManifest())

				assert.Error(t, err)
				assert.Contains(t, err.Error(), "bound to topic")
			},
		},
		{
			name: "convention.Disable deletes the subscription, tolerating absence.",
			setup: func(mps *servicemock.MockPubSubService) {
				mps.On("Delete", mock.Anything, subscriptionPath).
					Return(notFound())
			},
			test: func(t *testing.T, c Convention, mps *servicemock.MockPubSubService) {
				assert.NoError(t, c.Disable(ctx, mockManifest()))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mps := &servicemock.MockPubSubService{}
			c := FromServices(cfg, mps)

			tt.setup(mps)
			tt.test(t, c, mps)
		})
	}
}
