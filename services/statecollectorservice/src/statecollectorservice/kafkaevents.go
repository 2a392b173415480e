package statecollectorservice

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/alexkalak/go_univ3_quoting/common/models"
)

type kafkaClientConfig struct {
	KafkaTopic  string
	KafkaServer string
}

type kafkaClient struct {
	poolEventsWriter *kafka.Writer
}

func newKafkaClient(config kafkaClientConfig) (kafkaClient, error) {
	writer := kafka.Writer{
		Addr:         kafka.TCP(config.KafkaServer),
		Topic:        config.KafkaTopic,
		BatchTimeout: 1 * time.Millisecond,
		Async:        false,
	}

	client := kafkaClient{
		poolEventsWriter: &writer,
	}
	return client, nil
}

func (c *kafkaClient) sendPoolEvents(ctx context.Context, events []models.V3PoolEvent) error {
	messages := make([]kafka.Message, len(events))
	for i := range events {
		eventJSON, err := events[i].GetJSON()
		if err != nil {
			return err
		}
		messages[i] = kafka.Message{
			Value: eventJSON,
		}
	}

	return c.poolEventsWriter.WriteMessages(ctx, messages...)
}

func (c *kafkaClient) sendPoolEvent(ctx context.Context, event models.V3PoolEvent) error {
	eventJSON, err := event.GetJSON()
	if err != nil {
		return err
	}

	return c.poolEventsWriter.WriteMessages(ctx, kafka.Message{
		Value: eventJSON,
	})
}
