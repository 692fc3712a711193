package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/groundcrew/runway/internal/util"
)

const (
	EnvProject        = "RUNWAY_PROJECT"
	EnvRegion         = "RUNWAY_REGION"
	EnvServiceAccount = "RUNWAY_SERVICE_ACCOUNT"
	EnvImage          = "RUNWAY_IMAGE"
)

type Service struct {
	Name string
	Path string
}

type Caller struct {
	Project string
	Region  string
}

type Runtime struct {
	ServiceAccount string
}

type Git struct {
	Origin string
	Branch string
	Sha    string
	Root   string
	Dirty  bool
}

type Label struct {
	ManagedBy string
	Sha       string
	Branch    string
	Origin    string
}

type TemplateData struct {
	Project        string
	Region         string
	Image          string
	ServiceAccount string
}

type Config struct {
	Service      *Service
	Services     []Service
	Caller       Caller
	Runtime      Runtime
	Git          Git
	Label        Label
	TemplateData TemplateData
	Version      string
}

// derived information
func (c Config) NamespacePath() string {
	return "namespaces/" + c.Caller.Project
}

func (c Config) ServicePath(serviceName string) string {
	return c.NamespacePath() + "/services/" + serviceName
}

func (c Config) LocationPath(serviceName string) string {
	return fmt.Sprintf("projects/%s/locations/%s/services/%s", c.Caller.Project, c.Caller.Region, serviceName)
}

func (c Config) SubscriptionPath(subscriptionName string) string {
	return fmt.Sprintf("projects/%s/subscriptions/%s", c.Caller.Project, subscriptionName)
}

func (c Config) TopicPath(topicName string) string {
	return fmt.Sprintf("projects/%s/topics/%s", c.Caller.Project, topicName)
}

func (c Config) RegionalEndpoint() string {
	return "https://" + c.Caller.Region + "-run.googleapis.com/"
}

// ResourceLabels stamps converged services so deployments can be listed
// without guessing at naming schemes.
func (c Config) ResourceLabels() map[string]string {
	labels := map[string]string{
		c.Label.ManagedBy: "runway",
	}

	if util.ShaLike(c.Git.Sha) {
		labels[c.Label.Sha] = util.ShortSha(c.Git.Sha)
	}

	if c.Git.Branch != "" {
		labels[c.Label.Branch] = util.LabelSafe(c.Git.Branch)
	}

	if origin, err := url.Parse(c.Git.Origin); err == nil && origin.Path != "" {
		repo := strings.TrimSuffix(origin.Path, ".git")
		labels[c.Label.Origin] = util.LabelSafe(util.DeSlasher(repo))
	}

	return labels
}

func (c Config) DeploymentSelector() string {
	return c.Label.ManagedBy + "=runway"
}

// helper methods
func (c Config) Template(document string) (string, error) {
	tmpl, err := template.New("document").Option("missingkey=error").Parse(document)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, c.TemplateData); err != nil {
		return "", err
	}

	return b.String(), nil
}

func (c Config) Json(ctx context.Context) (string, error) {
	cJson, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	return string(cJson), nil
}

func (c Config) Find(path string) (Service, error) {
	for _, service := range c.Services {
		if service.Path == path || service.Name == path {
			return service, nil
		}
	}

	return Service{}, fmt.Errorf("no service declaration found at %s", path)
}
