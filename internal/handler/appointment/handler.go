package appointment

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/appointment"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

type Handler struct {
	service *appointment.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *appointment.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service: service,
		auth:    authMW,
	}
}

// RegisterRoutes exposes appointments to every authenticated role.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments", h.auth.Authenticate())
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

// CreateAppointment books a slot. A new booking answers 201; upgrading an
// existing Scheduled booking to Confirmed answers 200.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	detail, outcome, err := h.service.CreateOrUpdate(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if outcome == model.BookingCreated {
		httputil.RespondWithCreated(c, detail)
		return
	}
	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	skip, limit, err := httputil.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	patientID, err := httputil.ParseOptionalID(c, "patient_id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	doctorID, err := httputil.ParseOptionalID(c, "doctor_id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	appointments, err := h.service.List(c.Request.Context(), appointment.ListQuery{
		PatientID:  patientID,
		DoctorID:   doctorID,
		Date:       c.Query("date"),
		Pagination: model.Pagination{Skip: skip, Limit: limit},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	detail, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, detail)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	detail, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, detail)
}
