package connector

import (
	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/pipestream-ai/schemaflow/internal/runtime/logging"
	"github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
	"github.com/pipestream-ai/schemaflow/internal/runtime/properties"
)

var (
	PublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return kafka.NewPublisher(cfg, logger)
	}
	SubscriberFactory = func(cfg kafka.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
		return kafka.NewSubscriber(cfg, logger)
	}
)

// NewPublisher builds a Kafka publisher for an outgoing channel from the
// resolved property view.
func NewPublisher(resolver *properties.Resolver, channel string, log logging.ServiceLogger) (message.Publisher, error) {
	settings, err := OutgoingSettings(resolver, channel)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNopServiceLogger()
	}
	log.Debug("creating kafka publisher", logging.LogFields{
		"channel": settings.Channel,
		"brokers": settings.Brokers,
	})
	return PublisherFactory(
		kafka.PublisherConfig{
			Brokers:   settings.Brokers,
			Marshaler: newMarshaler(settings),
		},
		logging.NewWatermillAdapter(log),
	)
}

// NewSubscriber builds a Kafka subscriber for an incoming channel from the
// resolved property view. The synthesized auto.offset.reset=earliest maps to
// the oldest available offset so late-registered consumers still see every
// schema-bearing message.
func NewSubscriber(resolver *properties.Resolver, channel string, log logging.ServiceLogger) (message.Subscriber, error) {
	settings, err := IncomingSettings(resolver, channel)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNopServiceLogger()
	}

	saramaCfg := kafka.DefaultSaramaSubscriberConfig()
	if settings.OffsetReset == overlay.OffsetResetEarliest {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group := settings.ConsumerGroup
	if group == "" {
		group = settings.Channel
	}

	log.Debug("creating kafka subscriber", logging.LogFields{
		"channel": settings.Channel,
		"brokers": settings.Brokers,
		"group":   group,
		"offset":  settings.OffsetReset,
	})
	return SubscriberFactory(
		kafka.SubscriberConfig{
			Brokers:               settings.Brokers,
			Unmarshaler:           newMarshaler(settings),
			ConsumerGroup:         group,
			OverwriteSaramaConfig: saramaCfg,
		},
		logging.NewWatermillAdapter(log),
	)
}

// newMarshaler picks the wire codec for a channel. UUID-keyed channels use a
// partitioning marshaler so the record key rides outside the payload.
func newMarshaler(settings ChannelSettings) kafka.MarshalerUnmarshaler {
	if settings.KeySerde == overlay.KeySerde {
		return kafka.NewWithPartitioningMarshaler(partitionKeyFromMetadata)
	}
	return kafka.DefaultMarshaler{}
}
