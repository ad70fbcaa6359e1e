package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/kobbyowen/focus/pkg/core/audit/repository/dao"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type AuditHandler struct {
	logs  dao.LogRepository
	pages Paginator
}

func NewAuditHandler(logs dao.LogRepository, pages Paginator) *AuditHandler {
	return &AuditHandler{logs: logs, pages: pages}
}

// List GET /api/v1/audit-logs, newest first.
func (h *AuditHandler) List(ctx context.Context, c *app.RequestContext) {
	page, err := h.pages.Parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, count, err := h.logs.List(ctx, page.Offset(), page.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, page.Wrap(count, model.NewLogEntryList(entries)))
}
