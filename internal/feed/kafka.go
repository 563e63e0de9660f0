package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaSource consumes change events from a single changelog topic.
// Events for every table share the topic, keyed by record id so the
// per-record ordering guarantee holds; each subscription filters by
// table (and optionally record id) client-side. Every subscription
// gets its own consumer group so subscribers do not steal each
// other's events.
type KafkaSource struct {
	brokers []string
	topic   string
}

func NewKafkaSource(brokers ...string) *KafkaSource {
	return &KafkaSource{
		brokers: brokers,
		topic:   "catalog-changelog",
	}
}

func (s *KafkaSource) Subscribe(ctx context.Context, table string, filter *Filter, h Handlers) (Subscription, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  s.brokers,
		Topic:    s.topic,
		GroupID:  fmt.Sprintf("storefront-%s-%s", table, uuid.NewString()),
		MaxBytes: 10e6, // 10MB
	})

	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		for {
			if subCtx.Err() != nil {
				return
			}

			m, err := reader.ReadMessage(subCtx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("error reading changelog message: %v", err)
				continue
			}

			var ev Event
			if err := json.Unmarshal(m.Value, &ev); err != nil {
				log.Printf("error parsing changelog message: %v", err)
				continue
			}
			if ev.Table != table {
				continue
			}
			Deliver(h, filter, ev)
		}
	}()

	return &kafkaSubscription{cancel: cancel, reader: reader}, nil
}

type kafkaSubscription struct {
	cancel context.CancelFunc
	reader *kafka.Reader
}

func (k *kafkaSubscription) Close() error {
	k.cancel()
	if err := k.reader.Close(); err != nil {
		return fmt.Errorf("error closing changelog reader: %w", err)
	}
	return nil
}
