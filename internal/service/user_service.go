package service

import (
	"context"
	"errors"
	"strings"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials 在邮箱或密码不匹配时返回。
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "invalid email or password")
	// ErrUserInactive 在停用账号尝试登录时返回。
	ErrUserInactive = apperr.New(apperr.CodeForbidden, "account is inactive")
)

// UserService 负责账号注册、登录校验与资料查询。
type UserService struct {
	db *gorm.DB
}

// RegisterInput 描述注册请求；公开注册仅允许 patient 与 professional 两种角色。
type RegisterInput struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=8,max=72"`
	Role     string `validate:"omitempty,oneof=patient professional"`
}

// UserUpdateInput 为后台修改账号角色与状态，空值表示不修改。
type UserUpdateInput struct {
	Role   string
	Status string
}

// NewUserService 构造 UserService。
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register 创建新账号，邮箱重复时返回 CONFLICT。
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*db.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := validateInput(input); err != nil {
		return nil, err
	}

	role := enums.UserRolePatient
	if input.Role != "" {
		parsed, err := enums.ParseUserRole(input.Role)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid role")
		}
		role = parsed
	}

	return s.create(ctx, input.Email, input.Password, role)
}

func (s *UserService) create(ctx context.Context, email, password string, role enums.UserRole) (*db.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, persistenceError(err, "check email")
	}
	if count > 0 {
		return nil, apperr.New(apperr.CodeConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "hash password")
	}

	user := db.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       enums.UserStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, persistenceError(err, "create user")
	}
	return &user, nil
}

// Authenticate 校验邮箱与密码；停用账号返回 FORBIDDEN。
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	var user db.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, persistenceError(err, "load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != enums.UserStatusActive {
		return nil, ErrUserInactive
	}
	return &user, nil
}

// Get 按 ID 读取账号。
func (s *UserService) Get(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load user")
	}
	return &user, nil
}

// LookupProfile 要求恰好匹配一行：零行返回 NOT_FOUND，多行返回 AMBIGUOUS。
func (s *UserService) LookupProfile(ctx context.Context, userID string) (db.User, error) {
	var users []db.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Limit(2).Find(&users).Error; err != nil {
		return db.User{}, persistenceError(err, "lookup profile")
	}
	switch len(users) {
	case 0:
		return db.User{}, apperr.New(apperr.CodeNotFound, "profile not found")
	case 1:
		return users[0], nil
	default:
		return db.User{}, apperr.New(apperr.CodeAmbiguous, "multiple profiles matched")
	}
}

// ListByRole 返回指定角色的在用账号，按邮箱排序。
func (s *UserService) ListByRole(ctx context.Context, role enums.UserRole) ([]db.User, error) {
	if !role.IsValid() {
		return nil, apperr.Newf(apperr.CodeValidation, "invalid role %q", role)
	}
	var users []db.User
	err := s.db.WithContext(ctx).
		Where("user_type = ? AND status = ?", role, enums.UserStatusActive).
		Order("email ASC").
		Find(&users).Error
	if err != nil {
		return nil, persistenceError(err, "list users by role")
	}
	return users, nil
}

// ListAll 返回全部账号，最新注册的在前。
func (s *UserService) ListAll(ctx context.Context) ([]db.User, error) {
	var users []db.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, persistenceError(err, "list users")
	}
	return users, nil
}

// Update 修改账号角色或状态。
func (s *UserService) Update(ctx context.Context, id string, input UserUpdateInput) (*db.User, error) {
	updates := map[string]interface{}{}
	if value := strings.TrimSpace(input.Role); value != "" {
		role, err := enums.ParseUserRole(strings.ToLower(value))
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid role")
		}
		updates["user_type"] = role
	}
	if value := strings.TrimSpace(input.Status); value != "" {
		status, err := enums.ParseUserStatus(strings.ToLower(value))
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid status")
		}
		updates["status"] = status
	}
	if len(updates) == 0 {
		return nil, apperr.New(apperr.CodeValidation, "nothing to update")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, persistenceError(err, "update user")
	}
	return s.Get(ctx, id)
}

// EnsureAdmin 在邮箱不存在时创建管理员账号，已存在则保持不变。
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*db.User, bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, false, apperr.New(apperr.CodeValidation, "admin email and password are required")
	}

	var existing db.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, persistenceError(err, "load admin")
	}

	user, err := s.create(ctx, email, password, enums.UserRoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// requireUser 确认 userID 对应已有账号；传入 roles 时还要求角色匹配其中之一。
func requireUser(ctx context.Context, gdb *gorm.DB, userID string, roles ...enums.UserRole) (*db.User, error) {
	var user db.User
	err := gdb.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load user")
	}
	if len(roles) == 0 {
		return &user, nil
	}
	for _, role := range roles {
		if user.Role == role {
			return &user, nil
		}
	}
	return nil, apperr.Newf(apperr.CodeValidation, "user is not a %s", roles[0])
}
