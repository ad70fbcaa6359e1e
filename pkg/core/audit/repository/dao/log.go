package dao

import (
	"context"

	"github.com/kobbyowen/focus/pkg/core/audit/model"
)

// LogRepository stores audit entries. There is no update or delete on purpose.
type LogRepository interface {
	Append(ctx context.Context, description string) (model.LogEntry, error)
	List(ctx context.Context, offset, limit int) ([]model.LogEntry, int64, error)
}
