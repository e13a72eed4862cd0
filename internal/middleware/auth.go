package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/service/access"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

const ContextUser = "user"

// IdentityResolver turns a bearer token into the user it was issued to.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	resolver   IdentityResolver
	cookieName string
}

func NewAuthMiddleware(resolver IdentityResolver, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		resolver:   resolver,
		cookieName: cookieName,
	}
}

// Token returns the access token carried by the request. The Authorization
// header wins over the cookie.
func (m *AuthMiddleware) Token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(m.cookieName); err == nil {
		return strings.TrimPrefix(cookie, "Bearer ")
	}
	return ""
}

// Authenticate resolves the caller and stores it in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.Token(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("not authenticated", nil))
			c.Abort()
			return
		}

		user, err := m.resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.RequireRole(CurrentUser(c), roles...); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated caller, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUser); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
