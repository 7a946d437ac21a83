package report

import (
	"context"
	"fmt"
	"strconv"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishJSON(topic, key string, event any) error
}

// KafkaReporter publishes reports as JSON, keyed by target fid so reports
// about one account stay ordered.
type KafkaReporter struct {
	pub   Publisher
	topic string
}

func NewKafkaReporter(pub Publisher, topic string) *KafkaReporter {
	return &KafkaReporter{pub: pub, topic: topic}
}

func (k *KafkaReporter) Report(ctx context.Context, r Report) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := k.pub.PublishJSON(k.topic, strconv.FormatInt(r.TargetFID, 10), r); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}
