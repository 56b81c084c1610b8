package consumer

import (
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
)

type implConsumer struct {
	reader     fetcher
	topic      string
	handler    RequestHandler
	logger     logger.Logger
	semaphore  chan struct{}
	retryDelay time.Duration
}

// New creates a consumer group reader for cfg.Topic
func New(cfg config.KafkaConfig, handler RequestHandler, log logger.Logger, maxConcurrent int) (Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10 << 20,
	})
	return newConsumer(r, cfg.Topic, handler, log, maxConcurrent), nil
}

func newConsumer(r fetcher, topic string, handler RequestHandler, log logger.Logger, maxConcurrent int) *implConsumer {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &implConsumer{
		reader:     r,
		topic:      topic,
		handler:    handler,
		logger:     log,
		semaphore:  make(chan struct{}, maxConcurrent),
		retryDelay: time.Second,
	}
}
