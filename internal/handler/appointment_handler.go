package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/service"
)

type appointmentRequest struct {
	PatientID      string `json:"patient_id"`
	ProfessionalID string `json:"professional_id" binding:"required"`
	Date           string `json:"appointment_date" binding:"required"`
	Time           string `json:"appointment_time" binding:"required"`
}

type appointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListAppointments 按角色返回可见的预约。
func (a *API) ListAppointments(c *gin.Context) {
	list, err := a.appointments.ListByRole(c.Request.Context(), currentSession(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// UpcomingAppointments 返回今天及以后仍有效的预约。
func (a *API) UpcomingAppointments(c *gin.Context) {
	list, err := a.appointments.Upcoming(c.Request.Context(), currentSession(c))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// ScheduleAppointment 创建预约；患者只能为自己预约。
func (a *API) ScheduleAppointment(c *gin.Context) {
	var payload appointmentRequest
	if !a.bindJSON(c, &payload) {
		return
	}

	sess := currentSession(c)
	patientID := payload.PatientID
	if sess.Role == enums.UserRolePatient || patientID == "" {
		patientID = sess.UserID
	}
	if sess.Role != enums.UserRolePatient && patientID == sess.UserID {
		a.respondError(c, apperr.New(apperr.CodeValidation, "patient_id is required"))
		return
	}

	appointment, err := a.appointments.Schedule(c.Request.Context(), service.AppointmentInput{
		PatientID:      patientID,
		ProfessionalID: payload.ProfessionalID,
		Date:           payload.Date,
		Time:           payload.Time,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appointment})
}

// UpdateAppointmentStatus 修改预约状态。
func (a *API) UpdateAppointmentStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	var payload appointmentStatusRequest
	if !a.bindJSON(c, &payload) {
		return
	}
	appointment, err := a.appointments.UpdateStatus(c.Request.Context(), currentSession(c), id, payload.Status)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appointment})
}
