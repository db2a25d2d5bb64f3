package runtime

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pipestream-ai/schemaflow/internal/runtime/bindings"
	"github.com/pipestream-ai/schemaflow/internal/runtime/classify"
	configpkg "github.com/pipestream-ai/schemaflow/internal/runtime/config"
	"github.com/pipestream-ai/schemaflow/internal/runtime/devservice"
	errspkg "github.com/pipestream-ai/schemaflow/internal/runtime/errors"
	loggingpkg "github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	"github.com/pipestream-ai/schemaflow/internal/runtime/metrics"
	overlaypkg "github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
	"github.com/pipestream-ai/schemaflow/internal/runtime/properties"
	"github.com/pipestream-ai/schemaflow/internal/runtime/symtab"
)

// ServiceDependencies holds the optional collaborators that the Service can
// use. Leave fields nil to get the default wiring.
type ServiceDependencies struct {
	// Index resolves type names to their inheritance facts. Required.
	Index symtab.Index

	// Resolver replaces the default property-source assembly (environment,
	// application file, overlay). Mostly for tests.
	Resolver *properties.Resolver

	// Runtime is the container engine driving the dev service. Nil disables
	// dev-service provisioning unless Manager is set.
	Runtime devservice.ContainerRuntime

	// Manager overrides the dev-service lifecycle manager built from Runtime.
	Manager *devservice.Manager

	// Metrics receives scan and lifecycle counters. Nil creates a fresh set.
	Metrics *metrics.Collectors

	// Registry is where the metrics are registered when MetricsEnabled is
	// set. Nil falls back to the default registerer.
	Registry prometheus.Registerer
}

// Result is the outcome of a Configure run: the channels that were detected,
// the resolver carrying every effective property tier, and the dev-service
// endpoint when one was provisioned.
type Result struct {
	Channels  *bindings.ChannelSet
	Resolver  *properties.Resolver
	Endpoint  *devservice.EndpointConfig
	Rewritten int
}

// Service wires the payload classifier, channel scanner, property overlay, and
// dev-service manager behind one Configure entry point.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	classifier *classify.Classifier
	scanner    *bindings.Scanner
	overlay    *overlaypkg.Overlay
	resolver   *properties.Resolver
	manager    *devservice.Manager
	metrics    *metrics.Collectors
}

// NewService constructs a Service for the supplied configuration. Call
// Configure with the application's declaration set to run the detection and
// provisioning sequence.
func NewService(conf *configpkg.Config, log loggingpkg.ServiceLogger, deps ServiceDependencies) (*Service, error) {
	if conf == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if err := conf.Validate(); err != nil {
		return nil, errspkg.NewConfigValidationError(err)
	}
	if deps.Index == nil {
		return nil, errspkg.ErrIndexRequired
	}
	if log == nil {
		log = loggingpkg.NewNopServiceLogger()
	}

	log.Info("Creating channel configuration service", loggingpkg.LogFields{
		"connector": connectorOf(conf),
		"config":    conf,
	})

	s := &Service{
		Conf:   conf,
		Logger: log,
	}

	s.classifier = classify.New(deps.Index, classify.Ruleset{
		Marker:   conf.ClassifierMarker,
		BaseImpl: conf.ClassifierBaseImpl,
		Root:     conf.ClassifierRoot,
	}, log)
	s.scanner = bindings.NewScanner(s.classifier, log)
	s.overlay = overlaypkg.New(connectorOf(conf))

	resolver, err := s.assembleResolver(deps)
	if err != nil {
		return nil, err
	}
	s.resolver = resolver

	s.metrics = deps.Metrics
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if conf.MetricsEnabled {
		if err := s.metrics.Register(deps.Registry); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	s.overlay.OnBuild(func() { s.metrics.OverlayBuilds.Inc() })

	s.manager = deps.Manager
	if s.manager == nil && deps.Runtime != nil {
		s.manager = devservice.NewManager(deps.Runtime, log,
			devservice.WithConnector(connectorOf(conf)))
	}

	return s, nil
}

// assembleResolver builds the ordinal-ranked property stack: environment,
// application file, pinned registry URL, and the synthesized overlay.
func (s *Service) assembleResolver(deps ServiceDependencies) (*properties.Resolver, error) {
	if deps.Resolver != nil {
		deps.Resolver.Add(s.overlay)
		return deps.Resolver, nil
	}

	// Connector-wide keys (e.g. "watermill-kafka.registry.url") join the
	// channel prefixes in environment enumeration.
	resolver := properties.NewResolver(properties.NewEnvSource(connectorOf(s.Conf)+"."), s.overlay)

	if s.Conf.ApplicationPropertiesFile != "" {
		src, err := properties.LoadApplicationFile(s.Conf.ApplicationPropertiesFile)
		if err != nil {
			return nil, errspkg.NewConfigValidationError(
				fmt.Errorf("load %s: %w", s.Conf.ApplicationPropertiesFile, err))
		}
		resolver.Add(src)
	}

	if s.Conf.RegistryURL != "" {
		resolver.Add(properties.NewMapSource("pinned-registry", properties.OrdinalApplication,
			map[string]string{
				overlaypkg.RegistryURLKey(connectorOf(s.Conf)): s.Conf.RegistryURL,
			}))
	}

	return resolver, nil
}

// Configure runs the full auto-configuration sequence over decls: scan for
// channels, normalize convenience annotations, arm the overlay, and bring the
// dev service into its desired state. The scan happens before the rewrite so
// convenience annotations keep their unconditional registration semantics.
func (s *Service) Configure(ctx context.Context, decls *bindings.Declarations) (*Result, error) {
	if decls == nil {
		return nil, errspkg.ErrDeclarationsRequired
	}

	channels := s.scanner.Scan(decls)
	rewritten := decls.Rewrite(s.Logger)

	s.overlay.SetChannels(channels)
	s.overlay.Enable()
	s.resolver.Add(properties.NewMapSource("channel-defaults", properties.OrdinalDefaults,
		bindings.DefaultBindings(channels, connectorOf(s.Conf))))

	s.metrics.ChannelsConfigured.WithLabelValues("incoming").Add(float64(len(channels.Incoming())))
	s.metrics.ChannelsConfigured.WithLabelValues("outgoing").Add(float64(len(channels.Outgoing())))

	result := &Result{
		Channels:  channels,
		Resolver:  s.resolver,
		Rewritten: rewritten,
	}

	if s.manager != nil {
		endpoint, outcome, err := s.manager.EnsureRunning(ctx,
			s.Conf.DevServices.Snapshot(), s.resolver, channels, s.Conf.DevServices.StartupTimeout)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case devservice.OutcomeStarted:
			s.metrics.DevServiceStarts.Inc()
		case devservice.OutcomeReused, devservice.OutcomeAdopted:
			s.metrics.DevServiceReuses.Inc()
		}
		if endpoint != nil {
			s.resolver.Add(properties.NewMapSource(endpoint.Name, properties.OrdinalDevService, endpoint.Config))
			result.Endpoint = endpoint
		}
	}

	return result, nil
}

// Resolver exposes the assembled property stack.
func (s *Service) Resolver() *properties.Resolver { return s.resolver }

// Overlay exposes the synthesized channel-settings source.
func (s *Service) Overlay() *overlaypkg.Overlay { return s.overlay }

// EffectiveProperties returns the flattened key/value view after tier
// resolution, for diagnostics and startup logging.
func (s *Service) EffectiveProperties() map[string]string {
	return s.resolver.Snapshot()
}

// Stop tears down the dev service, if one is managed and running.
func (s *Service) Stop() {
	if s.manager != nil && s.manager.Stop() {
		s.metrics.DevServiceStops.Inc()
	}
}

func connectorOf(conf *configpkg.Config) string {
	if conf.Connector != "" {
		return conf.Connector
	}
	return overlaypkg.DefaultConnector
}
