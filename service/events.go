package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/RaghavGalappanavar/Deployment/model"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// EventPublisher announces that a contract was created
type EventPublisher interface {
	Publish(ctx context.Context, event model.ContractCreatedEvent) error
	Close() error
}

// LogPublisher only writes the event to the log
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event model.ContractCreatedEvent) error {
	slog.InfoContext(ctx, "contract created event",
		"event_id", event.EventID,
		"contract_id", event.ContractID,
		"purchase_request_id", event.PurchaseRequestID,
		"trace_id", event.TraceID,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

// RedisPublisher publishes events as JSON on a pub/sub channel
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher accepts either a redis:// URL or host:port.
func NewRedisPublisher(addr, channel string) (*RedisPublisher, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis publisher requires an address")
	}

	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	opts.DialTimeout = 5 * time.Second

	return &RedisPublisher{rdb: redis.NewClient(opts), channel: channel}, nil
}

// Ping checks connectivity at startup
func (p *RedisPublisher) Ping(ctx context.Context) error {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event model.ContractCreatedEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// KafkaPublisher writes events to a topic keyed by purchase request id
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.ContractCreatedEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PurchaseRequestID),
		Value: raw,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
