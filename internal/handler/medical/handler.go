package medical

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	"github.com/jwalitptl/hpms-api/internal/service/medical"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

type Handler struct {
	service *medical.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(service *medical.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service: service,
		auth:    authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	histories := r.Group("/medical-histories", h.auth.Authenticate())
	{
		histories.GET("/:id", h.GetHistory)
		histories.GET("/patient/:id", h.ListForPatient)
		histories.POST("", h.auth.RequireRole(access.Clinical...), h.CreateHistory)
		histories.PUT("/:id", h.auth.RequireRole(access.Clinical...), h.UpdateHistory)
		histories.DELETE("/:id", h.auth.RequireRole(access.Practitioners...), h.DeleteHistory)
	}
}

func (h *Handler) CreateHistory(c *gin.Context) {
	var req model.CreateMedicalHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	history, err := h.service.CreateHistory(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, history)
}

func (h *Handler) GetHistory(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	history, err := h.service.GetHistory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	skip, limit, err := httputil.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	histories, err := h.service.ListForPatient(c.Request.Context(), patientID, model.Pagination{Skip: skip, Limit: limit})
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, histories)
}

func (h *Handler) UpdateHistory(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req model.UpdateMedicalHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	history, err := h.service.UpdateHistory(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, history)
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	history, err := h.service.DeleteHistory(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, history)
}
