package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	Publish(ctx context.Context, event entity.TaggedEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer checks the first broker and makes sure the topic exists.
// When the broker cannot be reached events are only logged.
func NewProducer(brokers []string, topic string) Producer {
	if len(brokers) == 0 {
		logrus.Warn("No Kafka brokers configured, tagging events will only be logged")
		return &logProducer{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logrus.Warnf("Kafka connection failed: %v, tagging events will only be logged", err)
		return &logProducer{}
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		logrus.Infof("Could not create topic %s (might already exist): %v", topic, err)
	}

	logrus.WithField("brokers", brokers).Info("Connected to Kafka")
	return &kafkaProducer{writer: newWriter(brokers, topic), topic: topic}
}

// newWriter returns an async writer, so a broker outage never holds up an
// upload. Delivery failures are reported through Completion.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion:   logDelivery,
	}
}

func logDelivery(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range messages {
		logrus.WithField("payload_key", string(m.Key)).Warnf("Failed to deliver tagging event: %v", err)
	}
}

func (p *kafkaProducer) Publish(ctx context.Context, event entity.TaggedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.PayloadKey),
		Value: value,
		Time:  event.TaggedAt,
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"topic":       p.topic,
		"payload_key": event.PayloadKey,
	}).Debug("Tagging event queued")
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// logProducer stands in when Kafka is disabled or unreachable.
type logProducer struct{}

func NewLogProducer() Producer {
	return &logProducer{}
}

func (m *logProducer) Publish(_ context.Context, event entity.TaggedEvent) error {
	logrus.WithFields(logrus.Fields{
		"payload_key": event.PayloadKey,
		"title":       event.TitleEN,
		"tags":        event.TagCount,
	}).Info("Image tagged")
	return nil
}

func (m *logProducer) Close() error {
	return nil
}
