package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/service"
)

type userUpdateRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

// ListUsers 返回全部账号。
func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.ListAll(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": usersPayload(users)})
}

// UpdateUser 修改账号角色或状态；管理员不能停用或降级自己。
func (a *API) UpdateUser(c *gin.Context) {
	var payload userUpdateRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	id := c.Param("id")
	if id == currentSession(c).UserID && (payload.Role != "" || payload.Status != "") {
		a.respondError(c, apperr.New(apperr.CodeForbidden, "admins cannot change their own role or status"))
		return
	}

	user, err := a.users.Update(c.Request.Context(), id, service.UserUpdateInput{Role: payload.Role, Status: payload.Status})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// Statistics 返回后台统计数据。
func (a *API) Statistics(c *gin.Context) {
	stats, err := a.stats.Statistics(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ActivityLog 返回全站最近的活动记录。
func (a *API) ActivityLog(c *gin.Context) {
	entries, err := a.stats.ActivityLog(c.Request.Context(), parseLimitQuery(c, 50, 200))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}
