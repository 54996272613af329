package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"gorm.io/gorm"
)

const (
	appointmentDateLayout = "2006-01-02"
	appointmentTimeLayout = "15:04"
)

// AppointmentService 管理患者与专业人员之间的预约。
type AppointmentService struct {
	db  *gorm.DB
	now func() time.Time
}

// AppointmentInput 描述一次预约请求。
type AppointmentInput struct {
	PatientID      string `validate:"required"`
	ProfessionalID string `validate:"required"`
	Date           string `validate:"required"`
	Time           string `validate:"required"`
}

// AppointmentView 是附带双方邮箱的预约视图。
type AppointmentView struct {
	db.Appointment
	PatientEmail      string `json:"patient_email"`
	ProfessionalEmail string `json:"professional_email"`
}

// NewAppointmentService 构造 AppointmentService。
func NewAppointmentService(gdb *gorm.DB) *AppointmentService {
	return &AppointmentService{db: gdb, now: time.Now}
}

// WithClock 替换当前时间来源，主要面向测试场景。
func (s *AppointmentService) WithClock(now func() time.Time) *AppointmentService {
	if now != nil {
		s.now = now
	}
	return s
}

// Schedule 创建预约；专业人员必须存在且处于在用状态，时间不能早于今天。
func (s *AppointmentService) Schedule(ctx context.Context, input AppointmentInput) (*db.Appointment, error) {
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	date, err := time.Parse(appointmentDateLayout, input.Date)
	if err != nil {
		return nil, apperr.Newf(apperr.CodeValidation, "date must use format %s", appointmentDateLayout)
	}
	clock, err := time.Parse(appointmentTimeLayout, input.Time)
	if err != nil {
		return nil, apperr.Newf(apperr.CodeValidation, "time must use format %s", appointmentTimeLayout)
	}
	if date.Format(appointmentDateLayout) < s.now().Format(appointmentDateLayout) {
		return nil, apperr.New(apperr.CodeValidation, "appointment date is in the past")
	}

	var professional db.User
	err = s.db.WithContext(ctx).
		Where("id = ? AND user_type = ? AND status = ?", input.ProfessionalID, enums.UserRoleProfessional, enums.UserStatusActive).
		First(&professional).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "professional not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load professional")
	}

	appointment := db.Appointment{
		PatientID:       input.PatientID,
		ProfessionalID:  professional.ID,
		AppointmentDate: date.Format(appointmentDateLayout),
		AppointmentTime: clock.Format(appointmentTimeLayout),
		Status:          enums.AppointmentStatusScheduled,
	}
	if err := s.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return nil, persistenceError(err, "schedule appointment")
	}
	return &appointment, nil
}

func (s *AppointmentService) baseQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("appointments").
		Select("appointments.*, patients.email AS patient_email, professionals.email AS professional_email").
		Joins("LEFT JOIN users AS patients ON patients.id = appointments.patient_id").
		Joins("LEFT JOIN users AS professionals ON professionals.id = appointments.professional_id")
}

// ListForPatient 返回患者的全部预约，按日期与时间升序。
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]AppointmentView, error) {
	return s.list(s.baseQuery(ctx).Where("appointments.patient_id = ?", patientID))
}

// ListForProfessional 返回专业人员的全部预约。
func (s *AppointmentService) ListForProfessional(ctx context.Context, professionalID string) ([]AppointmentView, error) {
	return s.list(s.baseQuery(ctx).Where("appointments.professional_id = ?", professionalID))
}

// ListByRole 按会话角色选择可见预约：患者看自己的，专业人员看分配给自己的，管理员看全部。
func (s *AppointmentService) ListByRole(ctx context.Context, sess Session) ([]AppointmentView, error) {
	switch sess.Role {
	case enums.UserRolePatient:
		return s.ListForPatient(ctx, sess.UserID)
	case enums.UserRoleProfessional:
		return s.ListForProfessional(ctx, sess.UserID)
	case enums.UserRoleAdmin:
		return s.list(s.baseQuery(ctx))
	default:
		return nil, apperr.New(apperr.CodeForbidden, "unknown role")
	}
}

// Upcoming 返回今天及以后仍处于 scheduled 的预约。
func (s *AppointmentService) Upcoming(ctx context.Context, sess Session) ([]AppointmentView, error) {
	today := s.now().Format(appointmentDateLayout)
	query := s.baseQuery(ctx).
		Where("appointments.status = ? AND appointments.appointment_date >= ?", enums.AppointmentStatusScheduled, today)

	switch sess.Role {
	case enums.UserRolePatient:
		query = query.Where("appointments.patient_id = ?", sess.UserID)
	case enums.UserRoleProfessional:
		query = query.Where("appointments.professional_id = ?", sess.UserID)
	case enums.UserRoleAdmin:
	default:
		return nil, apperr.New(apperr.CodeForbidden, "unknown role")
	}
	return s.list(query)
}

func (s *AppointmentService) list(query *gorm.DB) ([]AppointmentView, error) {
	views := []AppointmentView{}
	err := query.
		Order("appointments.appointment_date ASC").
		Order("appointments.appointment_time ASC").
		Order("appointments.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, persistenceError(err, "list appointments")
	}
	return views, nil
}

// Get 按 ID 读取预约。
func (s *AppointmentService) Get(ctx context.Context, id uint) (*db.Appointment, error) {
	var appointment db.Appointment
	err := s.db.WithContext(ctx).First(&appointment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.CodeNotFound, "appointment not found")
	}
	if err != nil {
		return nil, persistenceError(err, "load appointment")
	}
	return &appointment, nil
}

// UpdateStatus 修改预约状态；只有预约双方或管理员可以操作。
func (s *AppointmentService) UpdateStatus(ctx context.Context, sess Session, id uint, status string) (*db.Appointment, error) {
	parsed, err := enums.ParseAppointmentStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "invalid appointment status")
	}

	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Role != enums.UserRoleAdmin && sess.UserID != appointment.PatientID && sess.UserID != appointment.ProfessionalID {
		return nil, apperr.New(apperr.CodeForbidden, "not a participant of this appointment")
	}

	if err := s.db.WithContext(ctx).Model(appointment).Update("status", parsed).Error; err != nil {
		return nil, persistenceError(err, "update appointment status")
	}
	return s.Get(ctx, id)
}
