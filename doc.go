// Package schemaflow auto-configures messaging channels that carry structured
// protobuf payloads. It classifies declared payload types against a symbol
// index, detects the channels bound to them, synthesizes their serializer,
// deserializer, and offset settings as a priority-ranked configuration layer,
// and provisions an ephemeral schema registry container for local development
// when no endpoint is configured.
//
// The entry point is Service: build one with NewService, hand Configure the
// application's declaration set, and read the effective configuration back
// through the returned Resolver. Every synthesized key sits below explicit
// user configuration (environment variables, the application YAML file), so
// any single setting can be overridden without disabling the mechanism.
//
// # Channel detection
//
// Three binding annotations register a channel: incoming and outgoing on
// methods, and channel on emitter-typed fields or parameters. The native forms
// register only when the bound payload type classifies as structured; the
// proto-* convenience forms register unconditionally and are rewritten to the
// native forms during Configure.
//
// # Dev services
//
// When a channel needs a schema registry and none is configured, Configure
// starts an Apicurio Registry container via the local Docker engine and
// injects its endpoint one tier below the synthesized defaults' user-facing
// siblings. Equal configuration across calls reuses the running container;
// changed configuration restarts it. See the devservice options on
// ServiceDependencies to disable or share the container.
//
// The connector package turns the resolved channel settings into live
// Watermill Kafka publishers and subscribers.
package schemaflow
