// tagwatch logs every tagging event published by the web UI
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ds124wfegd/autotagger/config"
	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/pkg/kafka"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)

	kafkaCfg := config.KafkaConfig{
		Brokers: []string{"localhost:9094"},
		Topic:   "tagging-events",
		GroupID: "tagging-event-watcher",
	}
	if v, err := config.LoadConfig(); err != nil {
		logrus.Warnf("Cannot load config, using defaults: %v", err)
	} else if cfg, err := config.ParseConfig(v); err != nil {
		logrus.Warnf("Cannot parse config, using defaults: %v", err)
	} else {
		kafkaCfg = cfg.Kafka
	}

	brokers := strings.Split(config.GetEnv("KAFKA_BROKERS", strings.Join(kafkaCfg.Brokers, ",")), ",")
	topic := config.GetEnv("KAFKA_TOPIC", kafkaCfg.Topic)
	groupID := config.GetEnv("KAFKA_GROUP_ID", kafkaCfg.GroupID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := kafka.ConsumeEvents(ctx, brokers, topic, groupID, func(_ context.Context, event entity.TaggedEvent) error {
		logrus.WithFields(logrus.Fields{
			"payload_key": event.PayloadKey,
			"title_en":    event.TitleEN,
			"title_ar":    event.TitleAR,
			"tag_count":   event.TagCount,
			"tagged_at":   event.TaggedAt,
		}).Info("Image tagged")
		return nil
	})
	if err != nil {
		logrus.Fatalf("Tagging event consumer failed: %v", err)
	}
}
