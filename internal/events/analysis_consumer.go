package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AnalysisProcessor runs one queued trail analysis to completion.
type AnalysisProcessor interface {
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

// AnalysisRequestConsumer listens for queued analysis requests and drives
// them through the processor.
type AnalysisRequestConsumer struct {
	consumer  *Consumer
	processor AnalysisProcessor
	logger    *zap.Logger
}

// NewAnalysisRequestConsumer creates a new AnalysisRequestConsumer.
func NewAnalysisRequestConsumer(
	brokers []string,
	groupID string,
	processor AnalysisProcessor,
	logger *zap.Logger,
) *AnalysisRequestConsumer {
	consumer := NewConsumer(brokers, groupID, TopicAnalysisRequests, logger)
	return &AnalysisRequestConsumer{
		consumer:  consumer,
		processor: processor,
		logger:    logger,
	}
}

// Start begins consuming analysis requests. This blocks until the context is cancelled.
func (c *AnalysisRequestConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *AnalysisRequestConsumer) Close() error {
	return c.consumer.Close()
}

func (c *AnalysisRequestConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from request topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case AnalysisRequested:
		return c.handleAnalysisRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled request event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *AnalysisRequestConsumer) handleAnalysisRequested(ctx context.Context, cloudEvent CloudEvent) error {
	var evt AnalysisRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse AnalysisRequestedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing analysis request",
		zap.String("analysis_id", evt.AnalysisID.String()),
		zap.Int("photo_count", evt.PhotoCount),
	)

	if err := c.processor.ProcessAnalysis(ctx, evt.AnalysisID); err != nil {
		c.logger.Error("failed to process analysis request",
			zap.String("analysis_id", evt.AnalysisID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("analysis request processed",
		zap.String("analysis_id", evt.AnalysisID.String()),
	)
	return nil
}
