package umwelt

import (
	"context"
	"fmt"
	"os"

	"github.com/groundcrew/runway/internal/gitlib"
)

// https://en.wikipedia.org/wiki/Umwelt
//
// Umwelt (German for "environment" or "surroundings") is used to configure the SDK based on execution context.
// The name was chosen out of a desire to unburden the term "Config" and more accurately describe the activity of the struct.

type ThisCaller struct {
	Project        string
	Region         string
	ServiceAccount string
}

type ThisService struct {
	Name string
	Path string
}

type Here struct {
	Caller   ThisCaller
	Git      gitlib.DotGit
	Service  *ThisService
	Services []ThisService
}

// FromCwd discovers the execution context: the cloud project and region the
// caller is converging against, the identity services will run as, the git
// context, and any service declarations at or below the current directory.
// defaultProject is the project resolved from application default credentials,
// used when no environment override is present.
func FromCwd(ctx context.Context, cwd string, git gitlib.DotGit, defaultProject string) (here Here, err error) {
	// Caller
	here.Caller.Project = firstOf("RUNWAY_PROJECT", "GOOGLE_CLOUD_PROJECT")
	if here.Caller.Project == "" {
		here.Caller.Project = defaultProject
	}

	if here.Caller.Project == "" {
		return here, fmt.Errorf("no project found in environment or application default credentials")
	}

	here.Caller.Region = firstOf("RUNWAY_REGION", "GOOGLE_CLOUD_REGION")
	if here.Caller.Region == "" {
		return here, fmt.Errorf("no region found, set RUNWAY_REGION or GOOGLE_CLOUD_REGION")
	}

	if email, exists := os.LookupEnv("RUNWAY_SERVICE_ACCOUNT"); exists {
		here.Caller.ServiceAccount = email
	}

	// Git
	here.Git = git

	// Service
	here.Service = Selfish(cwd)
	here.Services = SelfDiscovery(here.Git.Root)

	return here, nil
}

func firstOf(keys ...string) string {
	for _, key := range keys {
		if value, exists := os.LookupEnv(key); exists && value != "" {
			return value
		}
	}

	return ""
}
