package service

import (
	"context"
	"testing"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
}

func TestAppointmentServiceScheduleAndList(t *testing.T) {
	gdb := setupServiceTestDB(t)
	patient := createTestUser(t, gdb, "pat@example.com", enums.UserRolePatient)
	pro := createTestUser(t, gdb, "pro@example.com", enums.UserRoleProfessional)
	svc := NewAppointmentService(gdb).WithClock(fixedClock)
	ctx := context.Background()

	later, err := svc.Schedule(ctx, AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-20", Time: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusScheduled, later.Status)

	_, err = svc.Schedule(ctx, AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-10", Time: "15:00"})
	require.NoError(t, err)

	list, err := svc.ListForPatient(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-05-10", list[0].AppointmentDate)
	assert.Equal(t, "pro@example.com", list[0].ProfessionalEmail)
	assert.Equal(t, "pat@example.com", list[0].PatientEmail)

	proList, err := svc.ListByRole(ctx, Session{UserID: pro.ID, Role: enums.UserRoleProfessional})
	require.NoError(t, err)
	assert.Len(t, proList, 2)
}

func TestAppointmentServiceScheduleValidation(t *testing.T) {
	gdb := setupServiceTestDB(t)
	patient := createTestUser(t, gdb, "pat@example.com", enums.UserRolePatient)
	pro := createTestUser(t, gdb, "pro@example.com", enums.UserRoleProfessional)
	svc := NewAppointmentService(gdb).WithClock(fixedClock)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AppointmentInput
		code  apperr.Code
	}{
		{name: "bad date", input: AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "20/05/2026", Time: "09:00"}, code: apperr.CodeValidation},
		{name: "bad time", input: AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-20", Time: "9am"}, code: apperr.CodeValidation},
		{name: "past date", input: AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-09", Time: "09:00"}, code: apperr.CodeValidation},
		{name: "missing professional", input: AppointmentInput{PatientID: patient.ID, Date: "2026-05-20", Time: "09:00"}, code: apperr.CodeValidation},
		{name: "not a professional", input: AppointmentInput{PatientID: patient.ID, ProfessionalID: patient.ID, Date: "2026-05-20", Time: "09:00"}, code: apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Schedule(ctx, tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), "expected %s, got %v", tt.code, err)
		})
	}
}

func TestAppointmentServiceUpcomingAndStatus(t *testing.T) {
	gdb := setupServiceTestDB(t)
	patient := createTestUser(t, gdb, "pat@example.com", enums.UserRolePatient)
	other := createTestUser(t, gdb, "other@example.com", enums.UserRolePatient)
	pro := createTestUser(t, gdb, "pro@example.com", enums.UserRoleProfessional)
	svc := NewAppointmentService(gdb).WithClock(fixedClock)
	ctx := context.Background()

	first, err := svc.Schedule(ctx, AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-11", Time: "10:00"})
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, AppointmentInput{PatientID: patient.ID, ProfessionalID: pro.ID, Date: "2026-05-12", Time: "10:00"})
	require.NoError(t, err)

	patientSess := Session{UserID: patient.ID, Role: enums.UserRolePatient}
	updated, err := svc.UpdateStatus(ctx, patientSess, first.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusCancelled, updated.Status)

	upcoming, err := svc.Upcoming(ctx, patientSess)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "2026-05-12", upcoming[0].AppointmentDate)

	_, err = svc.UpdateStatus(ctx, Session{UserID: other.ID, Role: enums.UserRolePatient}, first.ID, "completed")
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	_, err = svc.UpdateStatus(ctx, patientSess, first.ID, "postponed")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	adminList, err := svc.ListByRole(ctx, Session{UserID: "admin", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	assert.Len(t, adminList, 2)
}
