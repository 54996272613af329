package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/service"
)

type chatRequest struct {
	History []service.ChatTurn `json:"history"`
	Message string             `json:"message" binding:"required"`
}

type summaryRequest struct {
	Conversation []service.ChatTurn `json:"conversation" binding:"required"`
}

// ListenerChat 返回 AI 倾听者的回复，对话历史由客户端维护。
func (a *API) ListenerChat(c *gin.Context) {
	var payload chatRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	reply, err := a.listener.Chat(c.Request.Context(), payload.History, payload.Message)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

// ListenerSummary 总结对话并生成待审阅报告。
func (a *API) ListenerSummary(c *gin.Context) {
	var payload summaryRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	report, err := a.listener.Summarize(c.Request.Context(), currentSession(c).UserID, payload.Conversation)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}
