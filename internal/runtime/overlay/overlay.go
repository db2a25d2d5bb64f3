// Package overlay synthesizes serializer, deserializer, and offset settings
// for every registered channel and exposes them as a read-only property
// source. The overlay sits below explicit user configuration and above
// hard-coded defaults, so any single synthesized key can be overridden
// without disabling the mechanism.
package overlay

import (
	"sort"
	"sync"

	"github.com/pipestream-ai/schemaflow/internal/runtime/bindings"
	"github.com/pipestream-ai/schemaflow/internal/runtime/properties"
)

// SourceName identifies the overlay among property sources.
const SourceName = "schemaflow-channel-defaults"

// Overlay is the synthesized channel-settings layer. Properties build lazily
// on first read after Enable; the check-then-populate sequence is guarded so
// concurrent readers during startup observe a single consistent build.
type Overlay struct {
	mu        sync.Mutex
	connector string
	enabled   bool
	built     bool
	onBuild   func()
	incoming  map[string]struct{}
	outgoing  map[string]struct{}
	props     map[string]string
}

// New returns a disabled, empty Overlay for the given connector. An empty
// connector falls back to DefaultConnector.
func New(connector string) *Overlay {
	if connector == "" {
		connector = DefaultConnector
	}
	return &Overlay{
		connector: connector,
		incoming:  make(map[string]struct{}),
		outgoing:  make(map[string]struct{}),
		props:     make(map[string]string),
	}
}

// Enable arms the overlay. Until enabled, all reads see an empty layer.
func (o *Overlay) Enable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled = true
}

// RegisterIncoming adds an incoming channel. Registration is idempotent.
func (o *Overlay) RegisterIncoming(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.incoming[name] = struct{}{}
}

// RegisterOutgoing adds an outgoing channel. Registration is idempotent.
func (o *Overlay) RegisterOutgoing(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outgoing[name] = struct{}{}
}

// SetChannels replaces both channel sets with the scan result.
func (o *Overlay) SetChannels(set *bindings.ChannelSet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.incoming = make(map[string]struct{})
	o.outgoing = make(map[string]struct{})
	if set == nil {
		return
	}
	for _, name := range set.Incoming() {
		o.incoming[name] = struct{}{}
	}
	for _, name := range set.Outgoing() {
		o.outgoing[name] = struct{}{}
	}
}

// OnBuild registers a callback invoked exactly once, when the lazy build
// actually runs. The callback executes under the overlay's lock and must not
// call back into the Overlay.
func (o *Overlay) OnBuild(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onBuild = fn
}

// buildLocked synthesizes the property map once. Rebuilds are suppressed after
// the first build, preventing duplicate synthesis across repeated queries
// within one process lifetime. Callers must hold o.mu.
func (o *Overlay) buildLocked() {
	if !o.enabled || o.built {
		return
	}
	o.built = true

	for name := range o.incoming {
		o.props[IncomingKey(name, "connector")] = o.connector
		o.props[IncomingKey(name, "key.deserializer")] = KeySerde
		o.props[IncomingKey(name, "value.deserializer")] = ValueSerde
		o.props[IncomingKey(name, "auto.offset.reset")] = OffsetResetEarliest
	}

	for name := range o.outgoing {
		o.props[OutgoingKey(name, "connector")] = o.connector
		o.props[OutgoingKey(name, "key.serializer")] = KeySerde
		o.props[OutgoingKey(name, "value.serializer")] = ValueSerde
	}

	if len(o.incoming) > 0 || len(o.outgoing) > 0 {
		o.props[ConnectorKey(o.connector, "derive.class")] = "true"
		o.props[ConnectorKey(o.connector, "registry.auto-register")] = "true"
		o.props[ConnectorKey(o.connector, "registry.artifact-resolver-strategy")] = ArtifactResolverStrategy
		o.props[ConnectorKey(o.connector, "registry.find-latest")] = "true"
	}

	if o.onBuild != nil {
		o.onBuild()
	}
}

// Name implements properties.Source.
func (o *Overlay) Name() string { return SourceName }

// Ordinal implements properties.Source: below explicit application
// configuration, above library defaults.
func (o *Overlay) Ordinal() int { return properties.OrdinalOverlay }

// Properties implements properties.Source.
func (o *Overlay) Properties() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buildLocked()
	out := make(map[string]string, len(o.props))
	for k, v := range o.props {
		out[k] = v
	}
	return out
}

// PropertyNames implements properties.Source.
func (o *Overlay) PropertyNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buildLocked()
	names := make([]string, 0, len(o.props))
	for k := range o.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Value implements properties.Source. Missing keys delegate to the next tier;
// the overlay never errors on absence.
func (o *Overlay) Value(key string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buildLocked()
	v, ok := o.props[key]
	return v, ok
}

// Connector returns the connector identifier the overlay targets.
func (o *Overlay) Connector() string {
	return o.connector
}
