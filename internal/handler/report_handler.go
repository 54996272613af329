package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/service"
)

type reportUpdateRequest struct {
	Status            string  `json:"status"`
	Urgency           string  `json:"urgency"`
	ProfessionalNotes *string `json:"professional_notes"`
}

// ListReports 返回倾听摘要报告，可按 status 与 user_id 过滤。
func (a *API) ListReports(c *gin.Context) {
	reports, err := a.reports.List(c.Request.Context(), service.ReportFilter{
		Status: c.Query("status"),
		UserID: c.Query("user_id"),
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// UpdateReport 记录专业人员的审阅结果。
func (a *API) UpdateReport(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	var payload reportUpdateRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	report, err := a.reports.Update(c.Request.Context(), id, service.ReportUpdateInput{
		Status:            payload.Status,
		Urgency:           payload.Urgency,
		ProfessionalNotes: payload.ProfessionalNotes,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}
