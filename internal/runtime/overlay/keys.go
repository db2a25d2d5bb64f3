package overlay

// DefaultConnector identifies the messaging connector the synthesized
// settings target.
const DefaultConnector = "watermill-kafka"

// Serde identifiers. Keys are always UUIDs (an opinionated, enforced
// default); values go through the schema registry.
const (
	KeySerde   = "uuid"
	ValueSerde = "registry-protobuf"
)

// Connector-wide defaults.
const (
	ArtifactResolverStrategy = "simple-topic-id"
	OffsetResetEarliest      = "earliest"
)

// IncomingKey builds the property key for an incoming channel setting.
func IncomingKey(channel, suffix string) string {
	return "incoming." + channel + "." + suffix
}

// OutgoingKey builds the property key for an outgoing channel setting.
func OutgoingKey(channel, suffix string) string {
	return "outgoing." + channel + "." + suffix
}

// ConnectorKey builds a connector-wide property key.
func ConnectorKey(connector, suffix string) string {
	return connector + "." + suffix
}

// RegistryURLKey is the connector-level schema registry endpoint property.
func RegistryURLKey(connector string) string {
	return ConnectorKey(connector, "registry.url")
}
