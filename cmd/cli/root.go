package cli

import (
	"context"
	"os"

	"github.com/groundcrew/runway/cmd/cli/router"
	"github.com/groundcrew/runway/internal/gitlib"
	"github.com/groundcrew/runway/internal/umwelt"
	"github.com/groundcrew/runway/internal/util"
	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/sdk"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

func Invoke(ctx context.Context) {
	ctx, span := otel.Tracer("").Start(ctx, "continuous-delivery")
	defer span.End()

	// structured output stays machine readable under the platform's log
	// aggregation; the console writer is for humans at a terminal.
	if !util.InCloudRun() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
	}

	var root router.Root
	arg.MustParse(&root)

	configEnv(root)

	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load application default credentials")
	}

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to determine working directory")
	}

	git, err := gitlib.FromCwd()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read git context")
	}

	here, err := umwelt.FromCwd(ctx, cwd, git, creds.ProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to discover execution context")
	}

	cfg := config.FromHere(here)

	api, err := sdk.Init(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize SDK")
	}

	root.Handle(ctx, cfg, api)
}

// Take options given to the CLI and export them to their respective environment variables.
func configEnv(root router.Root) {
	if root.GlobalOpts.Project != "" {
		os.Setenv(config.EnvProject, root.GlobalOpts.Project)
	}

	if root.GlobalOpts.Region != "" {
		os.Setenv(config.EnvRegion, root.GlobalOpts.Region)
	}

	if root.GlobalOpts.ServiceAccount != "" {
		os.Setenv(config.EnvServiceAccount, root.GlobalOpts.ServiceAccount)
	}

	if root.GlobalOpts.Image != "" {
		os.Setenv(config.EnvImage, root.GlobalOpts.Image)
	}
}
