// Package devservice provisions an ephemeral schema registry container for
// local development and testing. A Manager owns the process-wide running
// handle: equal configuration reuses the running service, changed
// configuration restarts it, and teardown always clears the handle even when
// the underlying stop fails.
package devservice

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pipestream-ai/schemaflow/internal/runtime/bindings"
	"github.com/pipestream-ai/schemaflow/internal/runtime/ids"
	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	"github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
	"github.com/pipestream-ai/schemaflow/internal/runtime/properties"
)

// DefaultStartupTimeout bounds container start plus readiness.
const DefaultStartupTimeout = 60 * time.Second

// EndpointConfig is the discovery result handed to dependents once the
// backing service is reachable: the property keys to inject and the container
// the endpoint points at.
type EndpointConfig struct {
	Name        string            `json:"name"`
	ContainerID string            `json:"container_id"`
	Config      map[string]string `json:"config"`
}

// Outcome describes how EnsureRunning satisfied a request.
type Outcome int

const (
	// OutcomeSkipped means no backing service is needed or possible.
	OutcomeSkipped Outcome = iota
	// OutcomeStarted means a fresh container was started.
	OutcomeStarted
	// OutcomeReused means the running container already matched the request.
	OutcomeReused
	// OutcomeAdopted means a shared container started elsewhere was adopted.
	OutcomeAdopted
)

// ContainerSpec describes the container a runtime should start.
type ContainerSpec struct {
	Name          string
	Image         string
	Env           map[string]string
	Labels        map[string]string
	ContainerPort int
	// HostPort fixes the published port; zero publishes an ephemeral one.
	HostPort int
}

// StartedContainer identifies a running container and its published endpoint.
type StartedContainer struct {
	ID       string
	Host     string
	HostPort int
}

// ContainerRuntime abstracts the container engine the manager drives.
type ContainerRuntime interface {
	// Available reports whether a container runtime is reachable.
	Available(ctx context.Context) bool
	// Start pulls the image if needed, creates and starts the container, and
	// resolves the published host port.
	Start(ctx context.Context, spec ContainerSpec) (StartedContainer, error)
	// Stop stops and removes the container.
	Stop(ctx context.Context, id string) error
	// FindShared looks for a running container labeled as a shared service
	// with the given name.
	FindShared(ctx context.Context, serviceName string) (StartedContainer, bool, error)
}

// ReadyCheck blocks until the service behind baseURL answers, or fails.
type ReadyCheck func(ctx context.Context, baseURL string) error

// Option configures a Manager.
type Option func(*Manager)

// WithReadyCheck replaces the HTTP readiness probe, mainly for tests.
func WithReadyCheck(check ReadyCheck) Option {
	return func(m *Manager) { m.ready = check }
}

// WithExitHook replaces the process-exit hook installer. Passing nil disables
// hook installation (tests, embedders with their own lifecycle).
func WithExitHook(install func(stop func())) Option {
	return func(m *Manager) { m.installExitHook = install }
}

// WithConnector changes the connector whose endpoint property gates and
// receives the provisioned URL.
func WithConnector(connector string) Option {
	return func(m *Manager) {
		if connector != "" {
			m.connector = connector
		}
	}
}

// Manager owns the process-wide Running Service Handle. All EnsureRunning and
// Stop calls serialize on its mutex, making the compare-snapshot-then-restart
// sequence atomic with respect to concurrent callers.
type Manager struct {
	mu sync.Mutex

	runtime   ContainerRuntime
	log       logging.ServiceLogger
	connector string
	ready     ReadyCheck

	installExitHook func(stop func())
	hookOnce        sync.Once

	// Running handle. A non-nil running container implies snapshot and
	// endpoint reflect the configuration recorded at start time.
	running  *StartedContainer
	snapshot Snapshot
	endpoint *EndpointConfig
}

// NewManager returns a Manager over the given runtime. A nil logger falls
// back to a nop logger; the default exit hook installs a SIGINT/SIGTERM
// handler the first time a container starts.
func NewManager(runtime ContainerRuntime, log logging.ServiceLogger, opts ...Option) *Manager {
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	m := &Manager{
		runtime:   runtime,
		log:       log,
		connector: overlay.DefaultConnector,
		ready:     httpReadyCheck,
	}
	m.installExitHook = m.signalExitHook
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureRunning brings the backing service into the desired state and returns
// its endpoint config plus how the request was satisfied; a skipped request
// yields a nil endpoint. A request equal to the running snapshot reuses the
// service; a differing request stops the old service before starting the new
// one. Start failures are fatal and propagate to the caller.
func (m *Manager) EnsureRunning(
	ctx context.Context,
	desired Snapshot,
	resolver *properties.Resolver,
	channels *bindings.ChannelSet,
	timeout time.Duration,
) (*EndpointConfig, Outcome, error) {
	desired = desired.WithDefaults()
	if timeout <= 0 {
		timeout = DefaultStartupTimeout
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running != nil {
		if desired.Equal(m.snapshot) {
			m.log.Debug("backing service already running with equal configuration", logging.LogFields{
				"container": m.running.ID,
			})
			return m.endpoint, OutcomeReused, nil
		}
		m.log.Info("backing service configuration changed, restarting", logging.LogFields{
			"container": m.running.ID,
		})
		m.stopLocked(ctx)
	}

	if skip, reason := m.shouldSkipLocked(ctx, desired, resolver, channels); skip {
		m.log.Debug("not starting backing service", logging.LogFields{"reason": reason})
		return nil, OutcomeSkipped, nil
	}

	endpoint, outcome, err := m.startLocked(ctx, desired, timeout)
	if err != nil {
		return nil, OutcomeSkipped, err
	}

	m.hookOnce.Do(func() {
		if m.installExitHook != nil {
			m.installExitHook(func() { m.Stop() })
		}
	})

	return endpoint, outcome, nil
}

// shouldSkipLocked evaluates the guard conditions that prevent provisioning.
// Each guard is independently sufficient and logged distinctly by the caller.
func (m *Manager) shouldSkipLocked(
	ctx context.Context,
	desired Snapshot,
	resolver *properties.Resolver,
	channels *bindings.ChannelSet,
) (bool, string) {
	if !desired.Enabled {
		return true, "dev services disabled in configuration"
	}
	if resolver != nil && resolver.HasNonBlank(overlay.RegistryURLKey(m.connector)) {
		return true, overlay.RegistryURLKey(m.connector) + " is configured"
	}
	if !m.hasChannelWithoutEndpoint(resolver, channels) {
		return true, "all channels have a registry URL configured"
	}
	if !m.runtime.Available(ctx) {
		m.log.Info("container runtime is not available, please run the schema registry yourself", nil)
		return true, "no container runtime detected"
	}
	return false, ""
}

// hasChannelWithoutEndpoint reports whether at least one registered channel
// lacks its own explicit registry endpoint override.
func (m *Manager) hasChannelWithoutEndpoint(resolver *properties.Resolver, channels *bindings.ChannelSet) bool {
	if channels == nil || channels.Empty() {
		return false
	}
	if resolver == nil {
		return true
	}
	for _, name := range channels.Incoming() {
		if !resolver.HasNonBlank(overlay.IncomingKey(name, "registry.url")) {
			return true
		}
	}
	for _, name := range channels.Outgoing() {
		if !resolver.HasNonBlank(overlay.OutgoingKey(name, "registry.url")) {
			return true
		}
	}
	return false
}

func (m *Manager) startLocked(ctx context.Context, desired Snapshot, timeout time.Duration) (*EndpointConfig, Outcome, error) {
	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if desired.Shared {
		if adopted, ok, err := m.runtime.FindShared(startCtx, desired.ServiceName); err != nil {
			m.log.Error("shared service discovery failed", err, nil)
		} else if ok {
			m.log.Info("adopting shared backing service", logging.LogFields{
				"container": adopted.ID,
				"service":   desired.ServiceName,
			})
			m.adoptLocked(adopted, desired)
			return m.endpoint, OutcomeAdopted, nil
		}
	}

	spec := ContainerSpec{
		Name:          desired.ServiceName + "-" + ids.CreateContainerSuffix(),
		Image:         desired.Image,
		Env:           desired.Env,
		ContainerPort: registryPort,
		HostPort:      desired.FixedPort,
	}
	if desired.Shared {
		spec.Labels = map[string]string{ServiceLabel: desired.ServiceName}
	}

	started, err := m.runtime.Start(startCtx, spec)
	if err != nil {
		return nil, OutcomeSkipped, fmt.Errorf("start backing service %q: %w", desired.Image, err)
	}

	baseURL := fmt.Sprintf("http://%s:%d", started.Host, started.HostPort)
	if err := m.ready(startCtx, baseURL); err != nil {
		// The container is up but the service never became reachable; tear it
		// down before failing the startup sequence.
		if stopErr := m.runtime.Stop(ctx, started.ID); stopErr != nil {
			m.log.Error("failed to stop unready backing service", stopErr, nil)
		}
		return nil, OutcomeSkipped, fmt.Errorf("backing service %q not ready within %s: %w", desired.Image, timeout, err)
	}

	m.adoptLocked(started, desired)
	m.log.Info("backing service started", logging.LogFields{
		"container": started.ID,
		"url":       m.endpoint.Config[overlay.RegistryURLKey(m.connector)],
	})
	return m.endpoint, OutcomeStarted, nil
}

func (m *Manager) adoptLocked(container StartedContainer, desired Snapshot) {
	c := container
	m.running = &c
	m.snapshot = desired
	m.endpoint = &EndpointConfig{
		Name:        desired.ServiceName,
		ContainerID: container.ID,
		Config: map[string]string{
			overlay.RegistryURLKey(m.connector): fmt.Sprintf("http://%s:%d%s", container.Host, container.HostPort, apiBasePath),
		},
	}
}

// Stop tears the backing service down and clears the handle, reporting
// whether a service was actually running. Stop failures are logged and
// swallowed; repeated calls after the first are no-ops.
func (m *Manager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(context.Background())
}

func (m *Manager) stopLocked(ctx context.Context) bool {
	if m.running == nil {
		return false
	}
	if err := m.runtime.Stop(ctx, m.running.ID); err != nil {
		m.log.Error("failed to stop backing service", err, logging.LogFields{
			"container": m.running.ID,
		})
	}
	m.running = nil
	m.endpoint = nil
	m.snapshot = Snapshot{}
	return true
}

// Endpoint returns the current endpoint config, or nil when nothing runs.
func (m *Manager) Endpoint() *EndpointConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endpoint
}

func (m *Manager) signalExitHook(stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		stop()
	}()
}

// httpReadyCheck polls baseURL until any HTTP response arrives or the context
// expires.
func httpReadyCheck(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+apiBasePath, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", baseURL, ctx.Err())
		case <-ticker.C:
		}
	}
}
