package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const readRetryDelay = 200 * time.Millisecond

type EventHandler func(ctx context.Context, event entity.TaggedEvent) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ConsumeEvents reads tagging events until ctx is cancelled. Messages that
// fail to decode are logged and skipped.
func ConsumeEvents(ctx context.Context, brokers []string, topic, groupID string, handle EventHandler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	logrus.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
		"group":   groupID,
	}).Info("Tagging event consumer started")

	return consume(ctx, reader, handle, readRetryDelay)
}

func consume(ctx context.Context, reader messageReader, handle EventHandler, retryDelay time.Duration) error {
	defer reader.Close()

	failures := 0
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			failures++
			delay := readBackoff(retryDelay, failures)
			logrus.WithField("retry_in", delay.String()).Errorf("Error reading message from Kafka: %v", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}
		failures = 0

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Warnf("Failed to parse tagging event: %v", err)
			continue
		}

		if err := handle(ctx, event); err != nil {
			logrus.Errorf("Handling tagging event %s failed: %v", event.PayloadKey, err)
		}
	}
}

// readBackoff doubles the delay for every consecutive failure, capped at 16x base.
func readBackoff(base time.Duration, failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	if failures > 5 {
		failures = 5
	}
	return base * time.Duration(1<<(failures-1))
}

func DecodeEvent(value []byte) (entity.TaggedEvent, error) {
	var event entity.TaggedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return entity.TaggedEvent{}, err
	}
	if event.PayloadKey == "" {
		return entity.TaggedEvent{}, errors.New("event has no payload key")
	}
	return event, nil
}
