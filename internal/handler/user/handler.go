package user

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	"github.com/jwalitptl/hpms-api/internal/service/auth"
	"github.com/jwalitptl/hpms-api/internal/service/user"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

type Handler struct {
	svc     *user.Service
	authSvc *auth.Service
	auth    *middleware.AuthMiddleware
}

func NewHandler(svc *user.Service, authSvc *auth.Service, authMW *middleware.AuthMiddleware) *Handler {
	return &Handler{
		svc:     svc,
		authSvc: authSvc,
		auth:    authMW,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", h.CreateUser)

		authenticated := users.Group("", h.auth.Authenticate())
		authenticated.GET("/me", h.Me)
		authenticated.GET("/:id", h.GetUser)
		authenticated.GET("", h.auth.RequireRole(access.AdminOnly...), h.ListUsers)
	}
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	created, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, created)
}

func (h *Handler) Me(c *gin.Context) {
	httputil.RespondWithSuccess(c, middleware.CurrentUser(c))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := httputil.ParseID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	found, err := h.svc.GetUser(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) ListUsers(c *gin.Context) {
	skip, limit, err := httputil.ParsePagination(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	users, err := h.svc.ListUsers(c.Request.Context(), model.Pagination{Skip: skip, Limit: limit})
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithSuccess(c, users)
}
