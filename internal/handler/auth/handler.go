package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/middleware"
	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/auth"
	"github.com/jwalitptl/hpms-api/pkg/httputil"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

// CookieConfig controls the cookie login sets.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	svc    *auth.Service
	auth   *middleware.AuthMiddleware
	cookie CookieConfig
}

func NewHandler(svc *auth.Service, authMW *middleware.AuthMiddleware, cookie CookieConfig) *Handler {
	return &Handler{
		svc:    svc,
		auth:   authMW,
		cookie: cookie,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.auth.Authenticate(), h.Logout)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	httputil.RespondWithCreated(c, user)
}

// Login accepts a JSON body or an OAuth2 password form.
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(validator.Translate(err))
		return
	}

	result, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, result.AccessToken, maxAge, "/", "", h.cookie.Secure, true)

	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), h.auth.Token(c)); err != nil {
		_ = c.Error(err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	httputil.RespondWithSuccess(c, gin.H{"message": "logged out"})
}
