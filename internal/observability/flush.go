package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry flushes buffered logs before process exit. Metrics are
// pull-based and need no flush.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
