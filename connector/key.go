package connector

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"

	"github.com/pipestream-ai/schemaflow/internal/runtime/errors"
	"github.com/pipestream-ai/schemaflow/internal/runtime/ids"
)

// PartitionKeyMetadata carries the Kafka record key on a Watermill message.
const PartitionKeyMetadata = "partition_key"

// KeyExtractor derives the record key for an outgoing message.
type KeyExtractor interface {
	Key(msg *message.Message) (string, error)
}

// RandomKeyExtractor assigns a fresh UUID per message, spreading records
// evenly across partitions. This matches the uuid key serde the overlay
// synthesizes.
type RandomKeyExtractor struct{}

func (RandomKeyExtractor) Key(*message.Message) (string, error) {
	return uuid.NewString(), nil
}

// partitionKeyFromMetadata is the partition key generator wired into the
// marshaler. Messages published outside Send without a key still get one.
func partitionKeyFromMetadata(topic string, msg *message.Message) (string, error) {
	if key := msg.Metadata.Get(PartitionKeyMetadata); key != "" {
		return key, nil
	}
	return uuid.NewString(), nil
}

// Send marshals payload and publishes it on channel with a UUID record key.
func Send(pub message.Publisher, channel string, payload proto.Message) error {
	return SendWith(pub, channel, payload, RandomKeyExtractor{})
}

// SendWith is Send with a caller-chosen key extractor, e.g. one deriving the
// key from a payload field so related records land on the same partition.
func SendWith(pub message.Publisher, channel string, payload proto.Message, extractor KeyExtractor) error {
	if pub == nil {
		return errors.ErrPublisherRequired
	}
	if channel == "" {
		return errors.ErrChannelRequired
	}
	if payload == nil {
		return errors.ErrPayloadRequired
	}
	if extractor == nil {
		extractor = RandomKeyExtractor{}
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for channel %q: %w", channel, err)
	}

	msg := message.NewMessage(ids.CreateULID(), data)
	key, err := extractor.Key(msg)
	if err != nil {
		return fmt.Errorf("derive record key for channel %q: %w", channel, err)
	}
	msg.Metadata.Set(PartitionKeyMetadata, key)

	return pub.Publish(channel, msg)
}
