package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type professionalInputRequest struct {
	Input string `json:"input" binding:"required"`
}

// SubmitProfessionalInput 为患者追加一条专业建议。
func (a *API) SubmitProfessionalInput(c *gin.Context) {
	var payload professionalInputRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	input, err := a.inputs.Submit(c.Request.Context(), c.Param("id"), currentSession(c).UserID, payload.Input)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"input": input})
}

// LatestProfessionalInput 返回患者当前生效的专业建议。
func (a *API) LatestProfessionalInput(c *gin.Context) {
	patientID := c.Param("id")
	if err := currentSession(c).Authorize(patientID); err != nil {
		a.respondError(c, err)
		return
	}
	text, err := a.inputs.Latest(c.Request.Context(), patientID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"input": text})
}
