// Package manifest models the desired state of a managed compute service:
// the container image backing it, the port it listens on, its runtime
// environment, the identity it executes under, and how traffic is split
// across its revisions. The declaration is inert data; convergence belongs
// to the deployment convention.
package manifest

import (
	"fmt"
	"strings"
)

const (
	FileName = "service.json.tmpl"

	defaultPort        = 8080
	defaultConcurrency = 80
	defaultTimeout     = 300
	defaultMemory      = "512Mi"
	defaultCpu         = "1"
	defaultAckDeadline = 10
)

type Traffic struct {
	RevisionName   string `json:"revisionName,omitempty"`
	LatestRevision bool   `json:"latestRevision,omitempty"`
	Percent        int64  `json:"percent"`
	Tag            string `json:"tag,omitempty"`
}

type Resources struct {
	Memory string `json:"memory,omitempty"`
	Cpu    string `json:"cpu,omitempty"`
}

type Subscription struct {
	Name               string `json:"name,omitempty"`
	Topic              string `json:"topic"`
	Path               string `json:"path,omitempty"`
	AckDeadlineSeconds int64  `json:"ackDeadlineSeconds,omitempty"`
}

type Manifest struct {
	Name           string            `json:"name"`
	Image          string            `json:"image"`
	Port           int64             `json:"port,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	ServiceAccount string            `json:"serviceAccount,omitempty"`
	Concurrency    int64             `json:"concurrency,omitempty"`
	TimeoutSeconds int64             `json:"timeoutSeconds,omitempty"`
	Resources      Resources         `json:"resources,omitempty"`
	Traffic        []Traffic         `json:"traffic,omitempty"`
	Invokers       []string          `json:"invokers,omitempty"`
	Subscription   *Subscription     `json:"subscription,omitempty"`
}

// SubscriptionName falls back to a name derived from the service when the
// declaration does not choose one.
func (m Manifest) SubscriptionName() string {
	if m.Subscription != nil && m.Subscription.Name != "" {
		return m.Subscription.Name
	}

	return m.Name + "-push"
}

func (m *Manifest) applyDefaults() {
	if m.Port == 0 {
		m.Port = defaultPort
	}

	if m.Concurrency == 0 {
		m.Concurrency = defaultConcurrency
	}

	if m.TimeoutSeconds == 0 {
		m.TimeoutSeconds = defaultTimeout
	}

	if m.Resources.Memory == "" {
		m.Resources.Memory = defaultMemory
	}

	if m.Resources.Cpu == "" {
		m.Resources.Cpu = defaultCpu
	}

	if len(m.Traffic) == 0 {
		m.Traffic = []Traffic{{LatestRevision: true, Percent: 100}}
	}

	if m.Subscription != nil && m.Subscription.AckDeadlineSeconds == 0 {
		m.Subscription.AckDeadlineSeconds = defaultAckDeadline
	}
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("service name must not be empty")
	}

	if m.Image == "" {
		return fmt.Errorf("service %s: image reference must not be empty", m.Name)
	}

	if m.Port < 1 || m.Port > 65535 {
		return fmt.Errorf("service %s: port %d out of range", m.Name, m.Port)
	}

	for name := range m.Env {
		if name == "" {
			return fmt.Errorf("service %s: environment variable with empty name", m.Name)
		}
	}

	// Revisions receive traffic by name or by latest-revision pin, and the
	// split must account for every invocation.
	var percentSum int64
	for _, target := range m.Traffic {
		if target.Percent < 0 || target.Percent > 100 {
			return fmt.Errorf("service %s: traffic percent %d out of range", m.Name, target.Percent)
		}

		if !target.LatestRevision && target.RevisionName == "" {
			return fmt.Errorf("service %s: traffic target needs a revision name or the latest-revision pin", m.Name)
		}

		percentSum += target.Percent
	}

	if percentSum != 100 {
		return fmt.Errorf("service %s: traffic percents sum to %d, must sum to 100", m.Name, percentSum)
	}

	for _, member := range m.Invokers {
		if member != "allUsers" && member != "allAuthenticatedUsers" && !strings.Contains(member, ":") {
			return fmt.Errorf("service %s: invoker %q is not a valid principal", m.Name, member)
		}
	}

	if m.Subscription != nil && m.Subscription.Topic == "" {
		return fmt.Errorf("service %s: subscription declared without a topic", m.Name)
	}

	if m.Subscription != nil && m.Subscription.Path != "" && !strings.HasPrefix(m.Subscription.Path, "/") {
		return fmt.Errorf("service %s: subscription path must start with /", m.Name)
	}

	return nil
}
