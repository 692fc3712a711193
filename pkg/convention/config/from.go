package config

import (
	"os"

	"github.com/groundcrew/runway/internal/umwelt"
)

func FromHere(here umwelt.Here) (c Config) {
	c.Service = (*Service)(here.Service)

	for _, s := range here.Services {
		c.Services = append(c.Services, (Service)(s))
	}

	c.Caller.Project = here.Caller.Project
	c.Caller.Region = here.Caller.Region

	c.Runtime.ServiceAccount = here.Caller.ServiceAccount

	if here.Git.Origin != nil {
		c.Git.Origin = here.Git.Origin.String()
	}
	c.Git.Branch = here.Git.Branch
	c.Git.Sha = here.Git.Sha
	c.Git.Root = here.Git.Root
	c.Git.Dirty = here.Git.Dirty

	c.Label.ManagedBy = "managed-by"
	c.Label.Sha = "git-sha"
	c.Label.Branch = "git-branch"
	c.Label.Origin = "git-origin"

	c.TemplateData.Project = c.Caller.Project
	c.TemplateData.Region = c.Caller.Region
	c.TemplateData.Image = os.Getenv(EnvImage)
	c.TemplateData.ServiceAccount = c.Runtime.ServiceAccount

	return
}
