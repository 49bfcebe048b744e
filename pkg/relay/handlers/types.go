package handlers

import (
	"context"

	"lattice-hq/hermes/pkg/config"
	"lattice-hq/hermes/pkg/upstream"
)

// UpstreamClient is the slice of the upstream adapter the handlers consume.
// *upstream.APIClient and *upstream.ProxyClient both satisfy it via the
// upstream.Client interface.
type UpstreamClient interface {
	Mode() upstream.Mode
	Model() string
	StreamChat(ctx context.Context, req *upstream.Request) (<-chan *upstream.Reply, error)
	Balance(ctx context.Context) string
}

// HealthReporter reports the probed upstream health for readiness checks.
// *upstream.Prober satisfies it.
type HealthReporter interface {
	Status() upstream.Health
}

// UpstreamView returns the current upstream configuration. Handlers read
// through a view so hot-reloaded fields show up in responses.
type UpstreamView func() config.UpstreamConfig

// StaticUpstream returns a view pinned to cfg.
func StaticUpstream(cfg config.UpstreamConfig) UpstreamView {
	return func() config.UpstreamConfig { return cfg }
}
