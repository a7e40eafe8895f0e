package binding

import (
	"github.com/Rampop01/spectralpay/internal/chain"
	"github.com/Rampop01/spectralpay/internal/contracts"
	"github.com/Rampop01/spectralpay/internal/domain/marketplace"
	"github.com/Rampop01/spectralpay/internal/metrics"
	"github.com/Rampop01/spectralpay/internal/session"
	"github.com/Rampop01/spectralpay/pkg/logger"
)

// Deps are what operations need. Invoker, Addresses and Sessions are
// required; the rest have defaults.
type Deps struct {
	Invoker   chain.Invoker
	Addresses contracts.Addresses
	Sessions  *session.Manager
	// Network is the network mutations must be signed on.
	Network string
	Tracker *marketplace.Tracker
	Prover  marketplace.Prover
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

func (d Deps) withDefaults() *Deps {
	if d.Tracker == nil {
		d.Tracker = marketplace.NewTracker()
	}
	if d.Prover == nil {
		d.Prover = marketplace.PlaceholderProver{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewDefault("binding")
	}
	if d.Sessions == nil {
		d.Sessions = session.NewManager()
	}
	return &d
}

func (d *Deps) gatewayOpts() []contracts.Option {
	return []contracts.Option{
		contracts.WithLogger(d.Logger.Named("contracts")),
		contracts.WithMetrics(d.Metrics),
	}
}

func (d *Deps) market(sess *session.Session) *contracts.JobMarketplace {
	return contracts.NewJobMarketplace(d.Invoker, d.Addresses.JobMarketplace, sess, d.gatewayOpts()...)
}

func (d *Deps) registry(sess *session.Session) *contracts.PseudonymRegistry {
	return contracts.NewPseudonymRegistry(d.Invoker, d.Addresses.PseudonymRegistry, sess, d.gatewayOpts()...)
}

func (d *Deps) verifier(sess *session.Session) *contracts.ZKVerifier {
	return contracts.NewZKVerifier(d.Invoker, d.Addresses.ZKVerifier, sess, d.gatewayOpts()...)
}

func (d *Deps) escrow(sess *session.Session) *contracts.Escrow {
	return contracts.NewEscrow(d.Invoker, d.Addresses.Escrow, sess, d.gatewayOpts()...)
}
