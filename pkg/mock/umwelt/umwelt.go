package mock

import (
	"net/url"
	"path/filepath"

	"github.com/groundcrew/runway/internal/gitlib"
	"github.com/groundcrew/runway/internal/umwelt"
	"github.com/rs/zerolog/log"
)

const MockSha = "f1d2d2f924e986ac86fdf7b36c94bcdf32beec15"

func MockGit(org, repo, branch string) gitlib.DotGit {
	origin, err := url.Parse("https://github.com/" + org + "/" + repo + ".git")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse origin URL")
	}

	return gitlib.DotGit{
		Branch: branch,
		Sha:    MockSha,
		Root:   repo,
		Origin: origin,
		Dirty:  false,
	}
}

func FromCwd(cwd string, git gitlib.DotGit, serviceNames ...string) umwelt.Here {
	var services []umwelt.ThisService
	for _, name := range serviceNames {
		services = append(services, umwelt.ThisService{
			Name: name,
			Path: filepath.Join(git.Root, name),
		})
	}

	return umwelt.Here{
		Caller: umwelt.ThisCaller{
			Project:        "mock-project",
			Region:         "us-central1",
			ServiceAccount: "runner@mock-project.iam.gserviceaccount.com",
		},
		Git: git,
		Service: &umwelt.ThisService{
			Name: filepath.Base(cwd),
			Path: cwd,
		},
		Services: services,
	}
}
