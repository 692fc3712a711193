package deployment

import (
	"context"
	"fmt"
	"time"

	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/convention/manifest"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	runapi "google.golang.org/api/run/v1"
)

const (
	readyTimeout = 5 * time.Minute
	pollInterval = 3 * time.Second
)

type RunService interface {
	Inspect(ctx context.Context, name string) (*runapi.Service, error)
	List(ctx context.Context, parent, labelSelector string) ([]*runapi.Service, error)
	Create(ctx context.Context, parent string, service *runapi.Service) (*runapi.Service, error)
	Replace(ctx context.Context, name string, service *runapi.Service) (*runapi.Service, error)
	Delete(ctx context.Context, name string) error
	SetInvokerPolicy(ctx context.Context, resource string, members []string) error
}

type Deployment struct {
	runapi.Service
}

type Services struct {
	Run RunService
}

type Convention struct {
	Config  config.Config
	Service Services
}

func FromServices(c config.Config, r RunService) Convention {
	return Convention{
		Config: c,
		Service: Services{
			Run: r,
		},
	}
}

func (c Convention) Find(ctx context.Context, serviceName string) (Deployment, error) {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.Find")
	defer span.End()

	service, err := c.Service.Run.Inspect(ctx, c.Config.ServicePath(serviceName))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, err
	}

	return Deployment{*service}, nil
}

func (c Convention) List(ctx context.Context) ([]Deployment, error) {
	var deployments []Deployment

	services, err := c.Service.Run.List(ctx, c.Config.NamespacePath(), c.Config.DeploymentSelector())
	if err != nil {
		return []Deployment{}, err
	}

	for _, service := range services {
		deployments = append(deployments, Deployment{*service})
	}

	return deployments, nil
}

// Deploy converges the declaration: create when absent, replace when
// drifted, leave alone when already converged. It returns once the service
// reports Ready for the declared generation, so the resolved url is
// populated on success.
func (c Convention) Deploy(ctx context.Context, m manifest.Manifest) (Deployment, error) {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.Deploy")
	defer span.End()

	plan, err := c.Plan(ctx, m)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Deployment{}, err
	}

	switch plan.Action {
	case ActionNoop:
		log.Info().Str("service", m.Name).Msg("no drift between declaration and deployment")

	case ActionCreate:
		log.Info().Str("service", m.Name).Str("image", m.Image).Msg("creating service")
		if _, err := c.Service.Run.Create(ctx, c.Config.NamespacePath(), plan.Desired); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Deployment{}, err
		}

	case ActionUpdate:
		for _, change := range plan.Changes {
			log.Info().
				Str("service", m.Name).
				Str("field", change.Field).
				Str("live", change.Live).
				Str("desired", change.Desired).
				Msg("drift detected")
		}

		// Replacement carries the live metadata forward so the control
		// plane can check the resource version; only the spec and our
		// labels move to the desired state.
		merged := plan.Live
		merged.Spec = plan.Desired.Spec
		if merged.Metadata.Labels == nil {
			merged.Metadata.Labels = map[string]string{}
		}
		for key, value := range plan.Desired.Metadata.Labels {
			merged.Metadata.Labels[key] = value
		}

		if _, err := c.Service.Run.Replace(ctx, c.Config.ServicePath(m.Name), merged); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Deployment{}, err
		}
	}

	// invoker bindings sit outside the service spec, converge them even
	// when the spec itself shows no drift.
	if len(m.Invokers) > 0 {
		if err := c.Service.Run.SetInvokerPolicy(ctx, c.Config.LocationPath(m.Name), m.Invokers); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return Deployment{}, err
		}
	}

	if plan.Action == ActionNoop {
		return Deployment{*plan.Live}, nil
	}

	deployment, err := c.waitReady(ctx, m.Name)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return deployment, err
	}

	return deployment, nil
}

// Destroy is the only path that removes the service; dropping a declaration
// from the repo does not.
func (c Convention) Destroy(ctx context.Context, d Deployment) error {
	ctx, span := otel.Tracer("").Start(ctx, "deployment.Destroy")
	defer span.End()

	if err := c.Service.Run.Delete(ctx, c.Config.ServicePath(d.Name())); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c Convention) waitReady(ctx context.Context, serviceName string) (Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		deployment, err := c.Find(ctx, serviceName)
		if err != nil {
			return Deployment{}, err
		}

		if deployment.Observed() {
			switch status, reason, message := deployment.Condition(); status {
			case "True":
				return deployment, nil
			case "False":
				return deployment, fmt.Errorf("service %s not ready: %s: %s", serviceName, reason, message)
			}
		}

		select {
		case <-ctx.Done():
			return deployment, fmt.Errorf("timed out waiting for service %s to become ready: %w", serviceName, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Name returns the declared service name.
func (d Deployment) Name() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata.Name
}

// Url is the derived output of the whole affair: the externally reachable
// endpoint resolved by the platform. Empty until the service is ready.
func (d Deployment) Url() string {
	if d.Status == nil {
		return ""
	}
	return d.Status.Url
}

func (d Deployment) Revision() string {
	if d.Status == nil {
		return ""
	}
	return d.Status.LatestReadyRevisionName
}

func (d Deployment) Ready() bool {
	status, _, _ := d.Condition()
	return status == "True"
}

// Observed reports whether the platform has reconciled the generation we
// declared. Conditions from a previous generation say nothing about this one.
func (d Deployment) Observed() bool {
	if d.Metadata == nil || d.Status == nil {
		return false
	}
	return d.Status.ObservedGeneration >= d.Metadata.Generation
}

func (d Deployment) Condition() (status, reason, message string) {
	if d.Status == nil {
		return "Unknown", "", ""
	}

	for _, condition := range d.Status.Conditions {
		if condition.Type == "Ready" {
			return condition.Status, condition.Reason, condition.Message
		}
	}

	return "Unknown", "", ""
}

func (d Deployment) CreatedAt() string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata.CreationTimestamp
}

func (d Deployment) Image() string {
	container := container(&d.Service)
	if container == nil {
		return ""
	}
	return container.Image
}
