// Package run wraps the Cloud Run Admin API. It holds no convergence
// policy; deciding between create, replace and no-op belongs to the
// deployment convention.
package run

import (
	"context"

	runapi "google.golang.org/api/run/v1"
)

const invokerRole = "roles/run.invoker"

type Service struct {
	Client *runapi.APIService
}

func FromClient(client *runapi.APIService) Service {
	return Service{
		Client: client,
	}
}

// Inspect fetches a service by its namespace-qualified name
// (namespaces/{project}/services/{service}).
func (s Service) Inspect(ctx context.Context, name string) (*runapi.Service, error) {
	return s.Client.Namespaces.Services.Get(name).Context(ctx).Do()
}

func (s Service) List(ctx context.Context, parent, labelSelector string) ([]*runapi.Service, error) {
	call := s.Client.Namespaces.Services.List(parent)
	if labelSelector != "" {
		call = call.LabelSelector(labelSelector)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return response.Items, nil
}

func (s Service) Create(ctx context.Context, parent string, service *runapi.Service) (*runapi.Service, error) {
	return s.Client.Namespaces.Services.Create(parent, service).Context(ctx).Do()
}

func (s Service) Replace(ctx context.Context, name string, service *runapi.Service) (*runapi.Service, error) {
	return s.Client.Namespaces.Services.ReplaceService(name, service).Context(ctx).Do()
}

func (s Service) Delete(ctx context.Context, name string) error {
	_, err := s.Client.Namespaces.Services.Delete(name).Context(ctx).Do()
	return err
}

// SetInvokerPolicy replaces the run.invoker binding on a service with the
// given members, leaving every other binding untouched. The resource is
// location-qualified (projects/{project}/locations/{region}/services/{service}).
func (s Service) SetInvokerPolicy(ctx context.Context, resource string, members []string) error {
	policy, err := s.Client.Projects.Locations.Services.GetIamPolicy(resource).Context(ctx).Do()
	if err != nil {
		return err
	}

	var bindings []*runapi.Binding
	for _, binding := range policy.Bindings {
		if binding.Role != invokerRole {
			bindings = append(bindings, binding)
		}
	}

	bindings = append(bindings, &runapi.Binding{
		Role:    invokerRole,
		Members: members,
	})

	policy.Bindings = bindings

	_, err = s.Client.Projects.Locations.Services.SetIamPolicy(resource, &runapi.SetIamPolicyRequest{
		Policy: policy,
	}).Context(ctx).Do()

	return err
}
