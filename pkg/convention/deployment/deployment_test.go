package deployment

import (
	"context"
	"testing"

	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/convention/manifest"
	servicemock "github.com/groundcrew/runway/pkg/mock/service"
	umweltmock "github.com/groundcrew/runway/pkg/mock/umwelt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/api/googleapi"
	runapi "google.golang.org/api/run/v1"
)

func mockManifest() manifest.Manifest {
	return manifest.Manifest{
		Name:           "upload-service",
		Image:          "gcr.io/mock-project/upload-service@sha256:abc123",
		Port:           8000,
		Env:            map[string]string{"t": "10"},
		ServiceAccount: "runner@mock-project.iam.gserviceaccount.com",
		Concurrency:    80,
		TimeoutSeconds: 300,
		Resources:      manifest.Resources{Memory: "512Mi", Cpu: "1"},
		Traffic:        []manifest.Traffic{{LatestRevision: true, Percent: 100}},
	}
}

func readyService(c Convention, m manifest.Manifest, revision string) *runapi.Service {
	service := c.render(m)
	service.Metadata.Generation = 1
	service.Status = &runapi.ServiceStatus{
		Url:                       "https://upload-service-abc123-uc.a.run.app",
		ObservedGeneration:        1,
		LatestReadyRevisionName:   revision,
		LatestCreatedRevisionName: revision,
		Conditions: []*runapi.GoogleCloudRunV1Condition{
			{Type: "Ready", Status: "True"},
		},
	}
	return service
}

func notFound() error {
	return &googleapi.Error{Code: 404, Message: "service not found"}
}

func TestDeployment(t *testing.T) {
	ctx := context.Background()

	gitMock := umweltmock.MockGit("mockOrg", "mockRepo", "feature-branch")
	cfg := config.FromHere(umweltmock.FromCwd("mockRepo/upload-service", gitMock, "upload-service"))

	tests := []struct {
		name  string
		setup func(Convention, *servicemock.MockRunService)
		test  func(*testing.T, Convention, *servicemock.MockRunService)
	}{
		{
			name: "convention.Find calls service.Inspect correctly.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				got, err := c.Find(ctx, "upload-service")

				assert.NoError(t, err)
				assert.Equal(t, "upload-service", got.Name())
				assert.Equal(t, "https://upload-service-abc123-uc.a.run.app", got.Url())
			},
		},
		{
			name: "convention.Plan proposes create when the service is absent.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return((*runapi.Service)(nil), notFound())
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				plan, err := c.Plan(ctx, mockManifest())

				assert.NoError(t, err)
				assert.Equal(t, ActionCreate, plan.Action)
				assert.Empty(t, plan.Changes)
				assert.Equal(t, "gcr.io/mock-project/upload-service@sha256:abc123", plan.Desired.Spec.Template.Spec.Containers[0].Image)
			},
		},
		{
			name: "convention.Plan proposes noop when declaration matches deployment.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				plan, err := c.Plan(ctx, mockManifest())

				assert.NoError(t, err)
				assert.Equal(t, ActionNoop, plan.Action)
				assert.Empty(t, plan.Changes)
			},
		},
		{
			name: "convention.Plan detects image drift as a single change.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				drifted := mockManifest()
				drifted.Image = "gcr.io/mock-project/upload-service@sha256:def456"

				plan, err := c.Plan(ctx, drifted)

				assert.NoError(t, err)
				assert.Equal(t, ActionUpdate, plan.Action)
				assert.Len(t, plan.Changes, 1)
				assert.Equal(t, "image", plan.Changes[0].Field)
				assert.Equal(t, "gcr.io/mock-project/upload-service@sha256:abc123", plan.Changes[0].Live)
				assert.Equal(t, "gcr.io/mock-project/upload-service@sha256:def456", plan.Changes[0].Desired)
			},
		},
		{
			name: "convention.Deploy creates an absent service and resolves its url.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return((*runapi.Service)(nil), notFound()).Once()
				mrs.On("Create", mock.Anything, "namespaces/mock-project", mock.AnythingOfType("*run.Service")).
					Return((*runapi.Service)(nil), nil)
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				got, err := c.Deploy(ctx, mockManifest())

				assert.NoError(t, err)
				assert.True(t, got.Ready())
				assert.NotEmpty(t, got.Url())
				assert.Equal(t, "upload-service-00001-abc", got.Revision())
				mrs.AssertCalled(t, "Create", mock.Anything, "namespaces/mock-project", mock.AnythingOfType("*run.Service"))
			},
		},
		{
			name: "convention.Deploy leaves a converged service alone.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				got, err := c.Deploy(ctx, mockManifest())

				assert.NoError(t, err)
				assert.NotEmpty(t, got.Url())
				mrs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				mrs.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "convention.Deploy replaces a drifted service and cuts traffic to the new revision.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				drifted := mockManifest()
				drifted.Image = "gcr.io/mock-project/upload-service@sha256:def456"

				replaced := readyService(c, drifted, "upload-service-00002-def")
				replaced.Metadata.Generation = 2
				replaced.Status.ObservedGeneration = 2

				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil).Once()
				mrs.On("Replace", mock.Anything, "namespaces/mock-project/services/upload-service", mock.AnythingOfType("*run.Service")).
					Return((*runapi.Service)(nil), nil)
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(replaced, nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				drifted := mockManifest()
				drifted.Image = "gcr.io/mock-project/upload-service@sha256:def456"

				got, err := c.Deploy(ctx, drifted)

				assert.NoError(t, err)
				assert.Equal(t, "upload-service-00002-def", got.Revision())
				assert.Equal(t, "gcr.io/mock-project/upload-service@sha256:def456", got.Image())

				// the declared policy still routes every invocation to latest
				assert.Len(t, got.Spec.Traffic, 1)
				assert.True(t, got.Spec.Traffic[0].LatestRevision)
				assert.Equal(t, int64(100), got.Spec.Traffic[0].Percent)
			},
		},
		{
			name: "convention.Deploy binds declared invokers.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(readyService(c, mockManifest(), "upload-service-00001-abc"), nil)
				mrs.On("SetInvokerPolicy", mock.Anything, "projects/mock-project/locations/us-central1/services/upload-service",
					[]string{"serviceAccount:pusher@mock-project.iam.gserviceaccount.com"}).
					Return(nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				withInvoker := mockManifest()
				withInvoker.Invokers = []string{"serviceAccount:pusher@mock-project.iam.gserviceaccount.com"}

				_, err := c.Deploy(ctx, withInvoker)

				assert.NoError(t, err)
				mrs.AssertCalled(t, "SetInvokerPolicy", mock.Anything, "projects/mock-project/locations/us-central1/services/upload-service",
					[]string{"serviceAccount:pusher@mock-project.iam.gserviceaccount.com"})
			},
		},
		{
			name: "convention.Deploy surfaces a failed rollout.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				failed := readyService(c, mockManifest(), "upload-service-00001-abc")
				failed.Status.Conditions = []*runapi.GoogleCloudRunV1Condition{
					{Type: "Ready", Status: "False", Reason: "HealthCheckContainerError", Message: "container failed to start"},
				}

				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return((*runapi.Service)(nil), notFound()).Once()
				mrs.On("Create", mock.Anything, "namespaces/mock-project", mock.AnythingOfType("*run.Service")).
					Return((*runapi.Service)(nil), nil)
				mrs.On("Inspect", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(failed, nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				_, err := c.Deploy(ctx, mockManifest())

				assert.Error(t, err)
				assert.Contains(t, err.Error(), "HealthCheckContainerError")
			},
		},
		{
			name: "convention.Destroy calls service.Delete correctly.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("Delete", mock.Anything, "namespaces/mock-project/services/upload-service").
					Return(nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				d := Deployment{runapi.Service{Metadata: &runapi.ObjectMeta{Name: "upload-service"}}}

				assert.NoError(t, c.Destroy(ctx, d))
				mrs.AssertCalled(t, "Delete", mock.Anything, "namespaces/mock-project/services/upload-service")
			},
		},
		{
			name: "convention.List filters on the managed-by selector.",
			setup: func(c Convention, mrs *servicemock.MockRunService) {
				mrs.On("List", mock.Anything, "namespaces/mock-project", "managed-by=runway").
					Return([]*runapi.Service{readyService(c, mockManifest(), "upload-service-00001-abc")}, nil)
			},
			test: func(t *testing.T, c Convention, mrs *servicemock.MockRunService) {
				deployments, err := c.List(ctx)

				assert.NoError(t, err)
				assert.Len(t, deployments, 1)
				assert.Equal(t, "upload-service", deployments[0].Name())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mrs := &servicemock.MockRunService{}
			c := FromServices(cfg, mrs)

			tt.setup(c, mrs)
			tt.test(t, c, mrs)
		})
	}
}
