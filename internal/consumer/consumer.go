package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Start fetches messages until ctx is cancelled. Each message is handled in
// its own goroutine and committed once handled, whatever the outcome.
func (c *implConsumer) Start(ctx context.Context) error {
	c.logger.Info(ctx, "Kafka consumer started: topic=%s", c.topic)

	var wg sync.WaitGroup
	defer func() {
		c.logger.Info(ctx, "Waiting for ongoing processing to complete...")
		wg.Wait()
		c.logger.Info(ctx, "Kafka consumer stopped")
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn(ctx, "Kafka fetch failed: %v", err)
			if err := sleepWithContext(ctx, c.retryDelay); err != nil {
				return err
			}
			continue
		}

		select {
		case c.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		wg.Add(1)
		go func(msg kafka.Message) {
			defer wg.Done()
			defer func() { <-c.semaphore }()
			c.handleMessage(ctx, msg)
		}(msg)
	}
}

func (c *implConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	req, err := decodeRequest(msg)
	if err != nil {
		c.logger.Error(ctx, "Dropping message at offset %d: %v", msg.Offset, err)
	} else if err := c.handler(ctx, req); err != nil {
		c.logger.Error(ctx, "Request %s failed: %v", req.ID, err)
	}

	// Commit on a fresh context so a shutdown does not leave handled
	// messages uncommitted.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.reader.CommitMessages(commitCtx, msg); err != nil {
		c.logger.Warn(ctx, "Failed to commit offset %d: %v", msg.Offset, err)
	}
}

// decodeRequest reads a JSON request; the message key stands in for a
// missing id.
func decodeRequest(msg kafka.Message) (models.Request, error) {
	var req models.Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return models.Request{}, fmt.Errorf("decode request: %w", err)
	}
	if req.ID == "" {
		req.ID = string(msg.Key)
	}
	if req.DocumentKey == "" || req.PhotoKey == "" {
		return models.Request{}, errors.New("request needs both document_key and photo_key")
	}
	return req, nil
}

// Stop closes the underlying reader
func (c *implConsumer) Stop() error {
	return c.reader.Close()
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
