package service

import (
	"strings"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/enums"
)

// Session 是一次请求中显式传递的当前用户信息。
type Session struct {
	UserID string
	Email  string
	Role   enums.UserRole
}

// IsZero 表示未登录。
func (s Session) IsZero() bool {
	return strings.TrimSpace(s.UserID) == ""
}

// IsStaff 表示专业人员或管理员。
func (s Session) IsStaff() bool {
	return s.Role == enums.UserRoleProfessional || s.Role == enums.UserRoleAdmin
}

// CanActOn 判断当前用户能否读写 subjectID 名下的数据：本人，或专业人员与管理员。
func (s Session) CanActOn(subjectID string) bool {
	if s.IsZero() {
		return false
	}
	return s.UserID == subjectID || s.IsStaff()
}

// Authorize 在无权访问时返回带错误码的错误。
func (s Session) Authorize(subjectID string) error {
	if s.IsZero() {
		return apperr.New(apperr.CodeUnauthorized, "login required")
	}
	if !s.CanActOn(subjectID) {
		return apperr.New(apperr.CodeForbidden, "not allowed to access this user's data")
	}
	return nil
}
