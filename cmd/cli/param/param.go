package param

type GlobalOpts struct {
	Project        string `arg:"--project,env:RUNWAY_PROJECT" help:"cloud project to converge against"`
	Region         string `arg:"--region,env:RUNWAY_REGION" help:"region hosting the managed compute platform"`
	ServiceAccount string `arg:"--service-account,env:RUNWAY_SERVICE_ACCOUNT" help:"runtime identity for deployed services"`
	Image          string `arg:"-i,--image,env:RUNWAY_IMAGE" help:"container image reference fed to the declaration template"`
}

type ServiceArg struct {
	Path string `arg:"positional" help:"path to service declaration" default:"."`
}

type Deploy struct {
	ServiceArg
}

type Destroy struct {
	ServiceArg
}

type Plan struct {
	ServiceArg
}

type Url struct {
	ServiceArg
}

type Deployments struct{}

type Config struct{}
