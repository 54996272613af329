package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/service"
)

const (
	sessionKeyUserID = "user_id"
	sessionKeyEmail  = "email"
	sessionKeyRole   = "role"

	sessionContextKey = "__snuggli_session"
)

// AuthRequired 校验会话并重新加载账号，停用或已删除的账号会被登出。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessions.Default(c)
		userID, _ := store.Get(sessionKeyUserID).(string)
		if userID == "" {
			a.respondError(c, apperr.New(apperr.CodeUnauthorized, "login required"))
			return
		}

		user, err := a.users.Get(c.Request.Context(), userID)
		if err != nil || user.Status != enums.UserStatusActive {
			store.Clear()
			_ = store.Save()
			a.respondError(c, apperr.New(apperr.CodeUnauthorized, "session expired"))
			return
		}

		sess := service.Session{UserID: user.ID, Email: user.Email, Role: user.Role}
		c.Set(sessionContextKey, sess)
		c.Request = c.Request.WithContext(a.log.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireRole 仅允许指定角色访问。
func (a *API) RequireRole(roles ...enums.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		for _, role := range roles {
			if sess.Role == role {
				c.Next()
				return
			}
		}
		a.respondError(c, apperr.New(apperr.CodeForbidden, "insufficient role"))
	}
}

func currentSession(c *gin.Context) service.Session {
	if value, ok := c.Get(sessionContextKey); ok {
		if sess, ok := value.(service.Session); ok {
			return sess
		}
	}
	return service.Session{}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册账号并直接登录。
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	user, err := a.users.Register(c.Request.Context(), service.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		Role:     payload.Role,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := a.startSession(c, user); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userPayload(*user)})
}

// Login 校验邮箱与密码并建立会话。
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := a.startSession(c, user); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	store := sessions.Default(c)
	store.Clear()
	store.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := store.Save(); err != nil {
		a.respondError(c, apperr.Wrap(apperr.CodeInternal, err, "clear session"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me 返回当前登录账号。
func (a *API) Me(c *gin.Context) {
	sess := currentSession(c)
	user, err := a.users.Get(c.Request.Context(), sess.UserID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(*user)})
}

func (a *API) startSession(c *gin.Context, user *db.User) error {
	store := sessions.Default(c)
	store.Clear()
	store.Set(sessionKeyUserID, user.ID)
	store.Set(sessionKeyEmail, user.Email)
	store.Set(sessionKeyRole, string(user.Role))
	if err := store.Save(); err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "save session")
	}
	return nil
}

func userPayload(user db.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"status":     user.Status,
		"created_at": user.CreatedAt,
	}
}
