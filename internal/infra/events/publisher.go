// Package events публикация доменных событий о записях в Kafka.
//
// События публикуются ПОСЛЕ коммита транзакции, fire-and-forget:
// сбой публикации логируется, но никогда не откатывает бронирование.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// publishTimeout ограничивает время фоновой публикации одного события
const publishTimeout = 5 * time.Second

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события в Kafka topic
type Publisher struct {
	writer *kafka.Writer
	log    Logger
}

// NewPublisher создает publisher для указанных брокеров и топика
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // события одной записи идут в одну партицию
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Publisher{writer: writer, log: log}
}

// Publish публикует событие синхронно.
// Ключ сообщения — appointment_id, чтобы события одной записи были упорядочены.
func (p *Publisher) Publish(ctx context.Context, event AppointmentEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event %s: %w", event.Kind, err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.AppointmentID)),
		Value: payload,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write %s for appointment id=%d: %w", event.Kind, event.AppointmentID, err)
	}

	return nil
}

// PublishAsync публикует событие в фоне, не блокируя вызывающего.
// Ошибки только логируются — уведомления best effort по контракту.
func (p *Publisher) PublishAsync(event AppointmentEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("events: async publish failed: %v", err)
		}
	}()
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}
