package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	"github.com/jwalitptl/hpms-api/internal/service/patient"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

type Handler struct {
	service *patient.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *patient.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service: service,
		auth:    authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients", h.auth.Authenticate())
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.auth.RequireRole(access.Clinical...), h.CreatePatient)
		patients.PUT("/:id", h.auth.RequireRole(access.Clinical...), h.UpdatePatient)
		patients.DELETE("/:id", h.auth.RequireRole(access.Practitioners...), h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	patient, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, patient)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) ListPatients(c *gin.Context) {
	skip, limit, err := httputil.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filter := &model.PatientFilter{
		Name:       c.Query("name"),
		Email:      c.Query("email"),
		Pagination: model.Pagination{Skip: skip, Limit: limit},
	}

	patients, err := h.service.ListPatients(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	patient, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	patient, err := h.service.DeletePatient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, patient)
}
