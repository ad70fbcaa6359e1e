package model

import (
	"time"

	auditmodel "github.com/kobbyowen/focus/pkg/core/audit/model"
)

type LogEntryRes struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewLogEntryList(entries []auditmodel.LogEntry) []LogEntryRes {
	res := make([]LogEntryRes, 0, len(entries))
	for _, e := range entries {
		res = append(res, LogEntryRes{ID: e.ID, Description: e.Description, CreatedAt: e.CreatedAt})
	}
	return res
}
