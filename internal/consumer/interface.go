package consumer

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Consumer pulls generation requests off a Kafka topic
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// RequestHandler runs one request decoded from a message
type RequestHandler func(ctx context.Context, req models.Request) error

// fetcher is the part of *kafka.Reader the consumer uses
type fetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
