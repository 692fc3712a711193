package sdk

import (
	"context"

	// config
	"github.com/groundcrew/runway/pkg/convention/config"

	// services
	pubsubservice "github.com/groundcrew/runway/pkg/service/pubsub"
	runservice "github.com/groundcrew/runway/pkg/service/run"

	// conventions
	"github.com/groundcrew/runway/pkg/convention/deployment"
	"github.com/groundcrew/runway/pkg/convention/subscription"

	// clients
	"google.golang.org/api/option"
	pubsubapi "google.golang.org/api/pubsub/v1"
	runapi "google.golang.org/api/run/v1"
)

type Clients struct {
	Run    *runapi.APIService
	PubSub *pubsubapi.Service
}

type Services struct {
	Run    runservice.Service
	PubSub pubsubservice.Service
}

type Conventions struct {
	Deployment   deployment.Convention
	Subscription subscription.Convention
}

type API struct {
	Conventions
	Config config.Config
}

func Init(ctx context.Context, config config.Config) (API, error) {
	clients, err := InitClients(ctx, config)
	if err != nil {
		return API{}, err
	}

	services := InitServices(clients)
	conventions := InitConventions(config, services)

	return API{
		Conventions: conventions,
		Config:      config,
	}, nil
}

func InitConventions(config config.Config, services Services) Conventions {
	return Conventions{
		Deployment:   deployment.FromServices(config, services.Run),
		Subscription: subscription.FromServices(config, services.PubSub),
	}
}

func InitServices(clients Clients) Services {
	return Services{
		Run:    runservice.FromClient(clients.Run),
		PubSub: pubsubservice.FromClient(clients.PubSub),
	}
}

// InitClients constructs the control plane clients. The compute client is
// pinned to the configured region; managed services are regional resources
// behind regional endpoints.
func InitClients(ctx context.Context, config config.Config) (Clients, error) {
	runClient, err := runapi.NewService(ctx, option.WithEndpoint(config.RegionalEndpoint()))
	if err != nil {
		return Clients{}, err
	}

	pubsubClient, err := pubsubapi.NewService(ctx)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		Run:    runClient,
		PubSub: pubsubClient,
	}, nil
}
