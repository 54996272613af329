package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/service"
)

type activityRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"activity_name" binding:"required"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
	Status      string `json:"status"`
}

type activityStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListActivities 返回当前用户的活动台账。
func (a *API) ListActivities(c *gin.Context) {
	a.listActivitiesFor(c, currentSession(c).UserID)
}

// ListPatientActivities 返回指定患者的活动台账。
func (a *API) ListPatientActivities(c *gin.Context) {
	a.listActivitiesFor(c, c.Param("id"))
}

func (a *API) listActivitiesFor(c *gin.Context, userID string) {
	if err := currentSession(c).Authorize(userID); err != nil {
		a.respondError(c, err)
		return
	}
	activities, err := a.activities.List(c.Request.Context(), userID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// CreateActivity 手动新增一条活动；专业人员可以通过 user_id 为患者添加。
func (a *API) CreateActivity(c *gin.Context) {
	var payload activityRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	sess := currentSession(c)
	userID := payload.UserID
	if userID == "" {
		userID = sess.UserID
	}
	if err := sess.Authorize(userID); err != nil {
		a.respondError(c, err)
		return
	}

	activity, err := a.activities.Create(c.Request.Context(), service.ActivityInput{
		UserID:      userID,
		Name:        payload.Name,
		Description: payload.Description,
		Benefit:     payload.Benefit,
		Status:      payload.Status,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": activity})
}

// UpdateActivityStatus 修改活动状态，仅活动所有者或专业人员、管理员可操作。
func (a *API) UpdateActivityStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	var payload activityStatusRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	ctx := c.Request.Context()
	existing, err := a.activities.Get(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := currentSession(c).Authorize(existing.UserID); err != nil {
		a.respondError(c, apperr.New(apperr.CodeForbidden, "not allowed to update this activity"))
		return
	}

	activity, err := a.activities.UpdateStatus(ctx, id, payload.Status)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}
