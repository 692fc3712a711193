package deployment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/groundcrew/runway/internal/util"
	"github.com/groundcrew/runway/pkg/convention/manifest"

	runapi "google.golang.org/api/run/v1"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionNoop   Action = "noop"
)

type Change struct {
	Field   string
	Live    string
	Desired string
}

type Plan struct {
	Action  Action
	Changes []Change
	Desired *runapi.Service
	Live    *runapi.Service
}

// Plan diffs the declaration against the live service. An unchanged
// declaration yields an empty change set, which Deploy treats as a no-op.
func (c Convention) Plan(ctx context.Context, m manifest.Manifest) (Plan, error) {
	desired := c.render(m)

	live, err := c.Service.Run.Inspect(ctx, c.Config.ServicePath(m.Name))
	if util.IsNotFound(err) {
		return Plan{Action: ActionCreate, Desired: desired}, nil
	}
	if err != nil {
		return Plan{}, err
	}

	changes := diff(live, desired)
	if len(changes) == 0 {
		return Plan{Action: ActionNoop, Desired: desired, Live: live}, nil
	}

	return Plan{Action: ActionUpdate, Changes: changes, Desired: desired, Live: live}, nil
}

// render projects the declaration into the platform's resource shape.
func (c Convention) render(m manifest.Manifest) *runapi.Service {
	var envVars []*runapi.EnvVar
	for _, name := range sortedKeys(m.Env) {
		envVars = append(envVars, &runapi.EnvVar{Name: name, Value: m.Env[name]})
	}

	var traffic []*runapi.TrafficTarget
	for _, target := range m.Traffic {
		traffic = append(traffic, &runapi.TrafficTarget{
			RevisionName:   target.RevisionName,
			LatestRevision: target.LatestRevision,
			Percent:        target.Percent,
			Tag:            target.Tag,
		})
	}

	return &runapi.Service{
		ApiVersion: "serving.knative.dev/v1",
		Kind:       "Service",
		Metadata: &runapi.ObjectMeta{
			Name:      m.Name,
			Namespace: c.Config.Caller.Project,
			Labels:    c.Config.ResourceLabels(),
		},
		Spec: &runapi.ServiceSpec{
			Template: &runapi.RevisionTemplate{
				Spec: &runapi.RevisionSpec{
					ContainerConcurrency: m.Concurrency,
					TimeoutSeconds:       m.TimeoutSeconds,
					ServiceAccountName:   m.ServiceAccount,
					Containers: []*runapi.Container{
						{
							Image: m.Image,
							Ports: []*runapi.ContainerPort{
								{Name: "http1", ContainerPort: m.Port},
							},
							Env: envVars,
							Resources: &runapi.ResourceRequirements{
								Limits: map[string]string{
									"memory": m.Resources.Memory,
									"cpu":    m.Resources.Cpu,
								},
							},
						},
					},
				},
			},
			Traffic: traffic,
		},
	}
}

func diff(live, desired *runapi.Service) []Change {
	var changes []Change

	compare := func(field, liveValue, desiredValue string) {
		if liveValue != desiredValue {
			changes = append(changes, Change{Field: field, Live: liveValue, Desired: desiredValue})
		}
	}

	liveContainer, desiredContainer := container(live), container(desired)
	if desiredContainer == nil {
		return changes
	}

	if liveContainer == nil {
		liveContainer = &runapi.Container{}
	}

	compare("image", liveContainer.Image, desiredContainer.Image)
	compare("port", portOf(liveContainer), portOf(desiredContainer))
	compare("env", canonicalEnv(liveContainer.Env), canonicalEnv(desiredContainer.Env))
	compare("memory", limitOf(liveContainer, "memory"), limitOf(desiredContainer, "memory"))
	compare("cpu", limitOf(liveContainer, "cpu"), limitOf(desiredContainer, "cpu"))

	liveSpec, desiredSpec := revisionSpec(live), revisionSpec(desired)
	if liveSpec == nil {
		liveSpec = &runapi.RevisionSpec{}
	}

	compare("serviceAccount", liveSpec.ServiceAccountName, desiredSpec.ServiceAccountName)
	compare("concurrency", strconv.FormatInt(liveSpec.ContainerConcurrency, 10), strconv.FormatInt(desiredSpec.ContainerConcurrency, 10))
	compare("timeoutSeconds", strconv.FormatInt(liveSpec.TimeoutSeconds, 10), strconv.FormatInt(desiredSpec.TimeoutSeconds, 10))

	compare("traffic", canonicalTraffic(trafficOf(live)), canonicalTraffic(trafficOf(desired)))

	// the platform stamps its own labels onto live metadata, so compare
	// only the keys we declare.
	for _, key := range sortedKeys(desired.Metadata.Labels) {
		var liveValue string
		if live.Metadata != nil {
			liveValue = live.Metadata.Labels[key]
		}
		compare("label:"+key, liveValue, desired.Metadata.Labels[key])
	}

	return changes
}

func container(service *runapi.Service) *runapi.Container {
	spec := revisionSpec(service)
	if spec == nil || len(spec.Containers) == 0 {
		return nil
	}
	return spec.Containers[0]
}

func revisionSpec(service *runapi.Service) *runapi.RevisionSpec {
	if service == nil || service.Spec == nil || service.Spec.Template == nil {
		return nil
	}
	return service.Spec.Template.Spec
}

func portOf(container *runapi.Container) string {
	if len(container.Ports) == 0 {
		return ""
	}
	return strconv.FormatInt(container.Ports[0].ContainerPort, 10)
}

func limitOf(container *runapi.Container, resource string) string {
	if container.Resources == nil {
		return ""
	}
	return container.Resources.Limits[resource]
}

func canonicalEnv(env []*runapi.EnvVar) string {
	pairs := make([]string, 0, len(env))
	for _, variable := range env {
		pairs = append(pairs, variable.Name+"="+variable.Value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func trafficOf(service *runapi.Service) []*runapi.TrafficTarget {
	if service == nil || service.Spec == nil {
		return nil
	}
	return service.Spec.Traffic
}

func canonicalTraffic(traffic []*runapi.TrafficTarget) string {
	targets := make([]string, 0, len(traffic))
	for _, target := range traffic {
		name := target.RevisionName
		if target.LatestRevision {
			name = "latest"
		}
		targets = append(targets, fmt.Sprintf("%s=%d", name, target.Percent))
	}
	sort.Strings(targets)
	return strings.Join(targets, ",")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
