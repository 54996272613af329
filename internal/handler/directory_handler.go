package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
)

// ListProfessionals 返回可预约的专业人员。
func (a *API) ListProfessionals(c *gin.Context) {
	a.listUsersByRole(c, enums.UserRoleProfessional)
}

// ListPatients 返回患者列表，供专业人员选择。
func (a *API) ListPatients(c *gin.Context) {
	a.listUsersByRole(c, enums.UserRolePatient)
}

func (a *API) listUsersByRole(c *gin.Context, role enums.UserRole) {
	users, err := a.users.ListByRole(c.Request.Context(), role)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": usersPayload(users)})
}

func usersPayload(users []db.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for _, user := range users {
		out = append(out, userPayload(user))
	}
	return out
}
