package doctor

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	"github.com/jwalitptl/hpms-api/internal/service/doctor"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

type Handler struct {
	service *doctor.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *doctor.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service: service,
		auth:    authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors", h.auth.Authenticate())
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)

		admin := doctors.Group("", h.auth.RequireRole(access.AdminOnly...))
		admin.POST("", h.CreateDoctor)
		admin.PUT("/:id", h.UpdateDoctor)
		admin.DELETE("/:id", h.DeleteDoctor)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, doctor)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	skip, limit, err := httputil.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	doctors, err := h.service.ListDoctors(c.Request.Context(), &model.DoctorFilter{
		Specialty:  c.Query("specialty"),
		Pagination: model.Pagination{Skip: skip, Limit: limit},
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	doctor, err := h.service.DeleteDoctor(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, doctor)
}
