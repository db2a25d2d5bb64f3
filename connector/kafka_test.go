package connector

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipestream-ai/schemaflow/internal/runtime/overlay"
)

func TestNewPublisherUsesResolvedSettings(t *testing.T) {
	orig := PublisherFactory
	t.Cleanup(func() { PublisherFactory = orig })

	var captured kafka.PublisherConfig
	PublisherFactory = func(cfg kafka.PublisherConfig, _ watermill.LoggerAdapter) (message.Publisher, error) {
		captured = cfg
		return &capturingPublisher{}, nil
	}

	values := synthesized("orders")
	values[overlay.ConnectorKey(overlay.DefaultConnector, "bootstrap.servers")] = "kafka-1:9092"

	_, err := NewPublisher(resolverWith(values), "orders", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092"}, captured.Brokers)
	_, isDefault := captured.Marshaler.(kafka.DefaultMarshaler)
	assert.False(t, isDefault, "uuid key serde selects the partitioning marshaler")
}

func TestNewPublisherPropagatesFactoryError(t *testing.T) {
	orig := PublisherFactory
	t.Cleanup(func() { PublisherFactory = orig })

	PublisherFactory = func(kafka.PublisherConfig, watermill.LoggerAdapter) (message.Publisher, error) {
		return nil, errors.New("pub")
	}

	_, err := NewPublisher(resolverWith(synthesized("orders")), "orders", nil)
	assert.Error(t, err)
}

func TestNewSubscriberMapsOffsetReset(t *testing.T) {
	orig := SubscriberFactory
	t.Cleanup(func() { SubscriberFactory = orig })

	var captured kafka.SubscriberConfig
	SubscriberFactory = func(cfg kafka.SubscriberConfig, _ watermill.LoggerAdapter) (message.Subscriber, error) {
		captured = cfg
		return nil, nil
	}

	t.Run("earliest maps to oldest offset", func(t *testing.T) {
		_, err := NewSubscriber(resolverWith(synthesized("orders")), "orders", nil)
		require.NoError(t, err)
		require.NotNil(t, captured.OverwriteSaramaConfig)
		assert.Equal(t, sarama.OffsetOldest, captured.OverwriteSaramaConfig.Consumer.Offsets.Initial)
	})

	t.Run("anything else maps to newest offset", func(t *testing.T) {
		values := synthesized("orders")
		values[overlay.IncomingKey("orders", "auto.offset.reset")] = "latest"
		_, err := NewSubscriber(resolverWith(values), "orders", nil)
		require.NoError(t, err)
		assert.Equal(t, sarama.OffsetNewest, captured.OverwriteSaramaConfig.Consumer.Offsets.Initial)
	})
}

func TestNewSubscriberConsumerGroupFallsBackToChannel(t *testing.T) {
	orig := SubscriberFactory
	t.Cleanup(func() { SubscriberFactory = orig })

	var captured kafka.SubscriberConfig
	SubscriberFactory = func(cfg kafka.SubscriberConfig, _ watermill.LoggerAdapter) (message.Subscriber, error) {
		captured = cfg
		return nil, nil
	}

	_, err := NewSubscriber(resolverWith(synthesized("orders")), "orders", nil)
	require.NoError(t, err)
	assert.Equal(t, "orders", captured.ConsumerGroup)
}

func TestNewSubscriberRejectsInvalidSettings(t *testing.T) {
	values := synthesized("orders")
	delete(values, overlay.RegistryURLKey(overlay.DefaultConnector))

	_, err := NewSubscriber(resolverWith(values), "orders", nil)
	assert.Error(t, err, "missing registry endpoint must block subscriber creation")
}
