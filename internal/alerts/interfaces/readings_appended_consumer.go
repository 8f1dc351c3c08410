package interfaces

import (
	"context"
	"errors"

	"go.uber.org/zap"

	alertapp "aquaculture-cloud/internal/alerts/application"
	"aquaculture-cloud/internal/telemetry/application/events"
)

// ReadingsAppendedConsumer feeds stored reading batches into the alert generator.
type ReadingsAppendedConsumer struct {
	generator *alertapp.Generator
	logger    *zap.Logger
}

// NewReadingsAppendedConsumer constructs a consumer.
func NewReadingsAppendedConsumer(generator *alertapp.Generator, logger *zap.Logger) (*ReadingsAppendedConsumer, error) {
	if generator == nil {
		return nil, errors.New("alerts consumer: nil generator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadingsAppendedConsumer{generator: generator, logger: logger}, nil
}

// Consume handles a readings appended event.
func (c *ReadingsAppendedConsumer) Consume(ctx context.Context, event events.ReadingsAppended) error {
	created, err := c.generator.Generate(ctx, event.Readings)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		c.logger.Info("alerts generated",
			zap.Int("readings", len(event.Readings)),
			zap.Int("alerts", len(created)),
		)
	}
	return nil
}
