// Package connector turns resolved channel properties into live Watermill
// Kafka publishers and subscribers. It consumes the effective property view
// assembled by the runtime (user configuration layered over the synthesized
// channel defaults) and validates it before touching the broker.
package connector

import (
	"fmt"
	"strings"

	"github.com/pipestream-ai/schemaflow/internal/runtime/errors"
	"github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
	"github.com/pipestream-ai/schemaflow/internal/runtime/properties"
)

// DefaultBootstrapServers is used when no bootstrap servers are configured at
// any tier. Matches the conventional local broker address.
const DefaultBootstrapServers = "localhost:9092"

// Direction of a channel binding.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// ChannelSettings is the resolved configuration of one channel binding.
type ChannelSettings struct {
	Channel   string
	Direction Direction
	Connector string

	Brokers       []string
	ConsumerGroup string

	KeySerde    string
	ValueSerde  string
	OffsetReset string

	// RegistryURL is the schema registry endpoint. Required when ValueSerde
	// goes through the registry.
	RegistryURL string
}

// IncomingSettings resolves the effective settings of an incoming channel.
func IncomingSettings(resolver *properties.Resolver, channel string) (ChannelSettings, error) {
	return resolve(resolver, channel, Incoming)
}

// OutgoingSettings resolves the effective settings of an outgoing channel.
func OutgoingSettings(resolver *properties.Resolver, channel string) (ChannelSettings, error) {
	return resolve(resolver, channel, Outgoing)
}

func resolve(resolver *properties.Resolver, channel string, dir Direction) (ChannelSettings, error) {
	if resolver == nil {
		return ChannelSettings{}, errors.ErrResolverRequired
	}
	if channel == "" {
		return ChannelSettings{}, errors.ErrChannelRequired
	}

	key := func(suffix string) string {
		if dir == Incoming {
			return overlay.IncomingKey(channel, suffix)
		}
		return overlay.OutgoingKey(channel, suffix)
	}

	s := ChannelSettings{Channel: channel, Direction: dir}

	s.Connector, _ = resolver.Value(key("connector"))
	if s.Connector == "" {
		s.Connector = overlay.DefaultConnector
	}
	if s.Connector != overlay.DefaultConnector {
		return ChannelSettings{}, errors.NewConfigValidationError(
			fmt.Errorf("channel %q uses unsupported connector %q", channel, s.Connector))
	}

	s.Brokers = splitServers(channelOrConnectorValue(resolver, key, s.Connector, "bootstrap.servers"))
	if len(s.Brokers) == 0 {
		s.Brokers = []string{DefaultBootstrapServers}
	}

	if dir == Incoming {
		s.ConsumerGroup, _ = resolver.Value(key("group.id"))
		s.OffsetReset, _ = resolver.Value(key("auto.offset.reset"))
		s.KeySerde, _ = resolver.Value(key("key.deserializer"))
		s.ValueSerde, _ = resolver.Value(key("value.deserializer"))
	} else {
		s.KeySerde, _ = resolver.Value(key("key.serializer"))
		s.ValueSerde, _ = resolver.Value(key("value.serializer"))
	}

	s.RegistryURL = channelOrConnectorValue(resolver, key, s.Connector, "registry.url")
	if s.ValueSerde == overlay.ValueSerde && s.RegistryURL == "" {
		return ChannelSettings{}, errors.NewConfigValidationError(
			fmt.Errorf("channel %q uses the %s serde but %s is not configured",
				channel, overlay.ValueSerde, overlay.RegistryURLKey(s.Connector)))
	}

	return s, nil
}

// channelOrConnectorValue reads a per-channel override first, then the
// connector-wide key.
func channelOrConnectorValue(resolver *properties.Resolver, key func(string) string, connector, suffix string) string {
	if v, ok := resolver.Value(key(suffix)); ok && v != "" {
		return v
	}
	v, _ := resolver.Value(overlay.ConnectorKey(connector, suffix))
	return v
}

func splitServers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
