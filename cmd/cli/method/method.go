package method

import (
	"context"
	"fmt"

	"github.com/groundcrew/runway/cmd/cli/param"
	"github.com/groundcrew/runway/cmd/cli/view"
	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/convention/manifest"
	"github.com/groundcrew/runway/pkg/sdk"

	"github.com/rs/zerolog/log"
)

func DeployService(ctx context.Context, cfg config.Config, api sdk.API, p *param.Deploy) {
	m, err := manifest.Decode(cfg, p.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode service declaration")
	}

	deployment, err := api.Deployment.Deploy(ctx, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to converge service")
	}

	if err := api.Subscription.Converge(ctx, deployment, m); err != nil {
		log.Fatal().Err(err).Msg("failed to converge push subscription")
	}

	fmt.Println(deployment.Url())
}

func DestroyDeployment(ctx context.Context, cfg config.Config, api sdk.API, p *param.Destroy) {
	m, err := manifest.Decode(cfg, p.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode service declaration")
	}

	deployment, err := api.Deployment.Find(ctx, m.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to find deployment")
	}

	if err := api.Subscription.Disable(ctx, m); err != nil {
		log.Fatal().Err(err).Msg("failed to remove push subscription")
	}

	if err := api.Deployment.Destroy(ctx, deployment); err != nil {
		log.Fatal().Err(err).Msg("failed to destroy deployment")
	}
}

func PlanDeployment(ctx context.Context, cfg config.Config, api sdk.API, p *param.Plan) {
	m, err := manifest.Decode(cfg, p.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode service declaration")
	}

	plan, err := api.Deployment.Plan(ctx, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to plan deployment")
	}

	fmt.Println(view.PlanView{Service: m.Name, Plan: plan}.Render())
}

func ListDeployments(ctx context.Context, cfg config.Config, api sdk.API, p *param.Deployments) {
	deployments, err := api.Deployment.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list deployments")
	}

	fmt.Println(view.DeploymentsView{Deployments: deployments}.Render())
}

func PrintUrl(ctx context.Context, cfg config.Config, api sdk.API, p *param.Url) {
	m, err := manifest.Decode(cfg, p.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode service declaration")
	}

	deployment, err := api.Deployment.Find(ctx, m.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to find deployment")
	}

	fmt.Println(deployment.Url())
}

func PrintConfig(ctx context.Context, cfg config.Config, api sdk.API, p *param.Config) {
	cfgJson, err := cfg.Json(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to marshal configuration")
	}

	fmt.Println(cfgJson)
}
