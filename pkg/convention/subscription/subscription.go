// Package subscription points the message queue at the deployment. A
// declaration may name a topic; convergence then keeps a push subscription
// aimed at the service's resolved url, authenticating pushes with the
// service's runtime identity.
package subscription

import (
	"context"
	"fmt"

	"github.com/groundcrew/runway/internal/util"
	"github.com/groundcrew/runway/pkg/convention/config"
	"github.com/groundcrew/runway/pkg/convention/deployment"
	"github.com/groundcrew/runway/pkg/convention/manifest"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	pubsubapi "google.golang.org/api/pubsub/v1"
)

type PubSubService interface {
	Inspect(ctx context.Context, name string) (*pubsubapi.Subscription, error)
	Create(ctx context.Context, name string, subscription *pubsubapi.Subscription) (*pubsubapi.Subscription, error)
	Patch(ctx context.Context, name string, subscription *pubsubapi.Subscription, updateMask string) (*pubsubapi.Subscription, error)
	Delete(ctx context.Context, name string) error
}

type Services struct {
	PubSub PubSubService
}

type Convention struct {
	Config  config.Config
	Service Services
}

func FromServices(c config.Config, p PubSubService) Convention {
	return Convention{
		Config: c,
		Service: Services{
			PubSub: p,
		},
	}
}

// Converge brings the push subscription in line with the declaration:
// create when defined only, patch when drifted, remove when a previously
// declared subscription no longer appears, no-op when matched.
func (c Convention) Converge(ctx context.Context, d deployment.Deployment, m manifest.Manifest) error {
	ctx, span := otel.Tracer("").Start(ctx, "subscription.Converge")
	defer span.End()

	if m.Subscription == nil {
		log.Debug().Str("service", m.Name).Msg("no subscription declared, removing any stale one")
		return c.Disable(ctx, m)
	}

	if d.Url() == "" {
		err := fmt.Errorf("service %s has no resolved url to push to", m.Name)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	name := c.Config.SubscriptionPath(m.SubscriptionName())
	desired := c.render(d, m)

	live, err := c.Service.PubSub.Inspect(ctx, name)
	if util.IsNotFound(err) {
		log.Info().Str("subscription", name).Str("endpoint", desired.PushConfig.PushEndpoint).Msg("creating push subscription")

		if _, err := c.Service.PubSub.Create(ctx, name, desired); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		return nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// topics are immutable on a subscription; moving topics means a new name.
	if live.Topic != desired.Topic {
		err := fmt.Errorf("subscription %s is bound to topic %s, declaration wants %s", name, live.Topic, desired.Topic)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if converged(live, desired) {
		log.Info().Str("subscription", name).Msg("no drift between declaration and subscription")
		return nil
	}

	log.Info().Str("subscription", name).Str("endpoint", desired.PushConfig.PushEndpoint).Msg("updating push subscription")

	if _, err := c.Service.PubSub.Patch(ctx, name, desired, "push_config,ack_deadline_seconds"); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// Disable removes the push subscription, tolerating one that never existed.
func (c Convention) Disable(ctx context.Context, m manifest.Manifest) error {
	ctx, span := otel.Tracer("").Start(ctx, "subscription.Disable")
	defer span.End()

	name := c.Config.SubscriptionPath(m.SubscriptionName())

	if err := c.Service.PubSub.Delete(ctx, name); err != nil && !util.IsNotFound(err) {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (c Convention) render(d deployment.Deployment, m manifest.Manifest) *pubsubapi.Subscription {
	return &pubsubapi.Subscription{
		Topic:              c.Config.TopicPath(m.Subscription.Topic),
		AckDeadlineSeconds: m.Subscription.AckDeadlineSeconds,
		PushConfig: &pubsubapi.PushConfig{
			PushEndpoint: d.Url() + m.Subscription.Path,
			OidcToken: &pubsubapi.OidcToken{
				ServiceAccountEmail: m.ServiceAccount,
			},
		},
	}
}

func converged(live, desired *pubsubapi.Subscription) bool {
	if live.PushConfig == nil {
		return false
	}

	if live.PushConfig.PushEndpoint != desired.PushConfig.PushEndpoint {
		return false
	}

	if live.AckDeadlineSeconds != desired.AckDeadlineSeconds {
		return false
	}

	liveEmail := ""
	if live.PushConfig.OidcToken != nil {
		liveEmail = live.PushConfig.OidcToken.ServiceAccountEmail
	}

	return liveEmail == desired.PushConfig.OidcToken.ServiceAccountEmail
}
