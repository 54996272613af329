package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type moodRequest struct {
	Mood         int    `json:"mood" binding:"required,min=1,max=10"`
	JournalEntry string `json:"journal_entry"`
}

// ListMoods 返回当前用户最近的心情记录。
func (a *API) ListMoods(c *gin.Context) {
	entries, err := a.moods.History(c.Request.Context(), currentSession(c).UserID, parseLimitQuery(c, 10, 100))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moods": entries})
}

// LogMood 记录一次心情。
func (a *API) LogMood(c *gin.Context) {
	var payload moodRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	entry, err := a.moods.Log(c.Request.Context(), currentSession(c).UserID, payload.Mood, payload.JournalEntry)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mood": entry})
}
