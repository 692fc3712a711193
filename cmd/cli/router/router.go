package router

import (
	"context"
	"os"

	"github.com/groundcrew/runway/cmd/cli/method"
	"github.com/groundcrew/runway/cmd/cli/param"
	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/sdk"

	"github.com/alexflint/go-arg"
)

type Root struct {
	param.GlobalOpts
	Deploy      *param.Deploy      `arg:"subcommand:deploy" help:"Converge a service declaration"`
	Destroy     *param.Destroy     `arg:"subcommand:destroy" help:"Remove a declared service"`
	Plan        *param.Plan        `arg:"subcommand:plan" help:"Show drift between declaration and deployment"`
	Deployments *param.Deployments `arg:"subcommand:deployments" help:"List converged services"`
	Url         *param.Url         `arg:"subcommand:url" help:"Print the resolved service url"`
	Config      *param.Config      `arg:"subcommand:config" help:"Print configuration"`
}

func (c Root) Handle(ctx context.Context, cfg config.Config, api sdk.API) {
	switch {
	case c.Deploy != nil:
		method.DeployService(ctx, cfg, api, c.Deploy)

	case c.Destroy != nil:
		method.DestroyDeployment(ctx, cfg, api, c.Destroy)

	case c.Plan != nil:
		method.PlanDeployment(ctx, cfg, api, c.Plan)

	case c.Deployments != nil:
		method.ListDeployments(ctx, cfg, api, c.Deployments)

	case c.Url != nil:
		method.PrintUrl(ctx, cfg, api, c.Url)

	case c.Config != nil:
		method.PrintConfig(ctx, cfg, api, c.Config)

	default:
		arg.MustParse(&c).WriteHelp(os.Stdout)

	}
}
