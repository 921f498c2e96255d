package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Op represents a logical unit of client work, typically one outbound call.
type Op struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartOp derives an operation-scoped logger from the provided context,
// assigning a fresh request identifier. It returns the derived context and the
// operation handle.
func StartOp(ctx context.Context, name string) (context.Context, *Op) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx)

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	logger = logger.With(
		slog.String("request_id", requestID),
		slog.String("op", name),
	)
	ctx = WithLogger(ctx, logger)

	op := &Op{
		name:   name,
		logger: logger,
		start:  time.Now(),
	}

	return ctx, op
}

// End finalizes the operation and emits a completion log entry.
func (o *Op) End(err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.logger.Warn("operation failed", slog.Duration("duration", time.Since(o.start)), "error", err)
		return
	}
	o.logger.Debug("operation completed", slog.Duration("duration", time.Since(o.start)))
}
