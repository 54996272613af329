package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRecommendations 为当前用户执行推荐流程。
// 流程内部的失败以 notice 形式返回，HTTP 状态始终为 200。
func (a *API) GetRecommendations(c *gin.Context) {
	view := a.recommendations.Run(c.Request.Context(), currentSession(c), "")
	c.JSON(http.StatusOK, view)
}

// GetPatientRecommendations 供专业人员为指定患者执行推荐流程。
func (a *API) GetPatientRecommendations(c *gin.Context) {
	view := a.recommendations.Run(c.Request.Context(), currentSession(c), c.Param("id"))
	c.JSON(http.StatusOK, view)
}
