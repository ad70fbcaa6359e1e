package handler

import (
	"net/http"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/common/config"
	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"github.com/kobbyowen/focus/pkg/web/model"
)

type validatable interface {
	Validate() error
}

func respondOK(c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, model.Success(data))
}

func respondCreated(c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, model.Success(data))
}

// 统一错误响应方法
func respondError(c *app.RequestContext, err error) {
	status, body := model.Failure(err)
	if body.ErrorCode == apperrors.CodeGeneral {
		hlog.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	c.JSON(status, body)
}

// bindAndValidate decodes the body into req and runs its rules.
// Rule violations become MissingParameter with the field errors as data.
func bindAndValidate(c *app.RequestContext, req validatable) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewMissingParameter(map[string]string{"body": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewMissingParameter(err)
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(c *app.RequestContext, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewMissingParameter(map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

type pageParams struct {
	Page     int
	PageSize int
}

func (p pageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p pageParams) Wrap(count int64, results interface{}) model.Page {
	return model.Page{Count: count, Page: p.Page, PageSize: p.PageSize, Results: results}
}

// Paginator reads ?page and ?page_size with configured defaults.
type Paginator struct {
	cfg config.PaginationConfig
}

func NewPaginator(cfg config.PaginationConfig) Paginator {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return Paginator{cfg: cfg}
}

func (pg Paginator) Parse(c *app.RequestContext) (pageParams, error) {
	p := pageParams{Page: 1, PageSize: pg.cfg.DefaultPageSize}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperrors.NewMissingParameter(map[string]string{"page": "must be a positive integer"})
		}
		p.Page = n
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return p, apperrors.NewMissingParameter(map[string]string{"page_size": "must be a positive integer"})
		}
		if n > pg.cfg.MaxPageSize {
			n = pg.cfg.MaxPageSize
		}
		p.PageSize = n
	}
	return p, nil
}
