package eventing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Subscribe registers a typed handler under a consumer name.
// Handler failures are logged and returned to the publisher.
func Subscribe[T any](bus EventBus, consumerName string, handler func(ctx context.Context, event T) error, logger *zap.Logger) {
	if bus == nil || handler == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bus.Subscribe(EventTypeOf[T](), func(ctx context.Context, event any) error {
		typed, ok := event.(T)
		if !ok {
			if ptr, okPtr := event.(*T); okPtr && ptr != nil {
				typed = *ptr
			} else {
				return fmt.Errorf("%w: consumer %s got %T", ErrInvalidEventType, consumerName, event)
			}
		}
		start := time.Now()
		if err := handler(ctx, typed); err != nil {
			logger.Error("event handler failed",
				zap.String("consumer", consumerName),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			return fmt.Errorf("%s: %w", consumerName, err)
		}
		return nil
	})
}
