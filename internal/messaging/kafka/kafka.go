package kafka

import (
	"fmt"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/egannguyen/go-order-management/internal/messaging"
)

// NewPublisher creates a Kafka-backed watermill publisher. Messages are
// partitioned by the partition-key metadata set in messaging.EventPublisher.
func NewPublisher(brokers []string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	saramaConfig := kafka.DefaultSaramaSyncPublisherConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.Retry.Max = 5

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               brokers,
			Marshaler:             kafka.NewWithPartitioningMarshaler(partitionKey),
			OverwriteSaramaConfig: saramaConfig,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	return publisher, nil
}

func partitionKey(topic string, msg *message.Message) (string, error) {
	if key := msg.Metadata.Get(messaging.MetadataPartitionKey); key != "" {
		return key, nil
	}
	return msg.UUID, nil
}
