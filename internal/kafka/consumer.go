// Package kafka содержит потребителя канала событий смены статусов.
// Канал доставляет push-события бэкенда по одному на смену статуса позиции;
// потребитель декодирует, валидирует и передает их менеджеру проекций.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/segmentio/kafka-go"

	"github.com/RoGogDBD/canteen/internal/config"
	"github.com/RoGogDBD/canteen/internal/models"
	"github.com/RoGogDBD/canteen/internal/retry"
	"github.com/RoGogDBD/canteen/internal/validation"
)

// Dispatcher применяет событие к активной проекции его пользователя.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev models.StatusEvent) bool
}

// Consumer читает события статусов из Kafka.
type Consumer struct {
	dispatcher Dispatcher
	validate   *validator.Validate
	dlq        *kafka.Writer
	dlqPolicy  retry.Policy
}

// NewConsumer создает потребителя. DLQ-писатель создается, только если
// тема DLQ сконфигурирована.
func NewConsumer(cfg config.KafkaConfig, dispatcher Dispatcher) *Consumer {
	c := &Consumer{
		dispatcher: dispatcher,
		validate:   validation.New(),
	}
	if cfg.DLQTopic != "" {
		c.dlq = &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.DLQTopic,
			Balancer: &kafka.LeastBytes{},
		}
		c.dlqPolicy = retry.Policy{
			MaxRetries: cfg.DLQMaxRetries,
			Backoff:    retry.NewBackoff(cfg.DLQBackoff, cfg.DLQBackoffCap, cfg.DLQBackoffJitter),
		}
	}
	return c
}

// Run читает события до отмены контекста.
func (c *Consumer) Run(ctx context.Context, brokers []string, topic, groupID string) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("kafka reader close error: %v", err)
		}
	}()
	defer c.closeDLQ()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			log.Printf("kafka read error: %v", err)
			return
		}

		if err := c.handleMessage(ctx, m.Value); err != nil {
			log.Printf("poison message: %v", err)
			c.sendToDLQ(ctx, m, err)
		}
	}
}

// handleMessage обрабатывает одно сообщение канала.
// Ошибка возвращается только для нечитаемых сообщений (кандидатов в DLQ);
// событие без подходящей цели — штатный молчаливый no-op.
func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var ev models.StatusEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	if err := c.validate.Struct(ev); err != nil {
		return fmt.Errorf("validate event: %w", err)
	}

	if !c.dispatcher.Dispatch(ctx, ev) {
		log.Printf("event for order %s item %s dropped (no active view or unmatched target)", ev.MainOrderID, ev.OrderID)
	}
	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, m kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}

	out := kafka.Message{
		Key:   m.Key,
		Value: m.Value,
		Headers: append(m.Headers, kafka.Header{
			Key:   "x-dead-letter-reason",
			Value: []byte(cause.Error()),
		}),
	}

	err := retry.Do(ctx, c.dlqPolicy, func() error {
		return c.dlq.WriteMessages(ctx, out)
	}, func(err error, attempt int, wait time.Duration) {
		log.Printf("dlq write attempt %d failed: %v (retrying in %v)", attempt, err, wait)
	})
	if err != nil {
		log.Printf("dlq write gave up: %v", err)
	}
}

func (c *Consumer) closeDLQ() {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Close(); err != nil {
		log.Printf("kafka dlq writer close error: %v", err)
	}
}
