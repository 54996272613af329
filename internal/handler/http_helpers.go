package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/snuggli/internal/apperr"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// respondError 将错误转换为统一的 JSON 结构，并按错误码选择 HTTP 状态。
func (a *API) respondError(c *gin.Context, err error) {
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case apperr.CodePersistence, apperr.CodeInternal:
	default:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	ctx := c.Request.Context()
	if meta.HTTPStatus >= http.StatusInternalServerError {
		a.log.Error(a.log.WithField(ctx, "error_code", typed.Code()), "request.error", err)
	} else {
		a.log.Debug(a.log.WithFields(ctx, map[string]any{"error_code": typed.Code(), "error": err.Error()}), "request.rejected")
	}

	c.AbortWithStatusJSON(meta.HTTPStatus, gin.H{"error": errorBody{
		Code:    string(typed.Code()),
		Message: msg,
		Details: typed.Details(),
	}})
}

func (a *API) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		a.respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		names := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
			names = append(names, fe.Field())
		}
		return apperr.New(apperr.CodeValidation, "invalid fields: "+strings.Join(names, ", ")).WithDetails(fields)
	}
	return apperr.Wrap(apperr.CodeValidation, err, "malformed request body")
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Newf(apperr.CodeValidation, "invalid %s", key)
	}
	return uint(id), nil
}

func parseLimitQuery(c *gin.Context, fallback, max int) int {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
