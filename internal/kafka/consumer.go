package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Consumer читает топик уведомлений и отдаёт обработчику уже
// декодированные события. Кривое сообщение пропускается, очередь
// из-за него не встаёт.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, NotificationEvent) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := decodeNotification(msg.Value)
		if err != nil {
			log.Printf("skip notification at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

func decodeNotification(raw []byte) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return NotificationEvent{}, err
	}
	if event.To == "" {
		return NotificationEvent{}, errors.New("notification without recipient")
	}
	return event, nil
}
