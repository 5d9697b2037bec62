package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

var _ bun.QueryHook = (*QueryHook)(nil)

// QueryHook logs every query at debug level.
type QueryHook struct {
	logger *zap.Logger
}

// NewQueryHook returns a hook writing to logger.
func NewQueryHook(logger *zap.Logger) *QueryHook {
	return &QueryHook{logger: logger}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		fields = append(fields, zap.Error(event.Err))
	}
	h.logger.Debug("bun query", fields...)
}
