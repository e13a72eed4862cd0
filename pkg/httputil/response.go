package httputil

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hpms-api/pkg/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Field   string      `json:"field,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, NewSuccessResponse(data))
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, NewSuccessResponse(data))
}

// RespondWithError sends an error response. Only client-fault errors expose
// their message; everything else is reported generically.
func RespondWithError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.StatusCode()
	resp := NewErrorResponse(appErr.Message)
	resp.Field = appErr.Field
	if !appErr.ClientFault() {
		resp.Message = http.StatusText(status)
		resp.Field = ""
	}

	if appErr.Code == errors.ErrUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(status, resp)
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidFormat(name, "invalid "+name, err)
	}
	return id, nil
}

// ParseOptionalID reads a positive integer query parameter; absent means nil.
func ParseOptionalID(c *gin.Context, name string) (*int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.InvalidFormat(name, "invalid "+name, err)
	}
	return &id, nil
}

// ParsePagination reads skip and limit query parameters.
func ParsePagination(c *gin.Context) (skip, limit int, err error) {
	skip, limit = 0, DefaultLimit

	if raw := c.Query("skip"); raw != "" {
		skip, err = strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return 0, 0, errors.InvalidFormat("skip", "skip must be a non-negative integer", err)
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return 0, 0, errors.InvalidFormat("limit", "limit must be a non-negative integer", err)
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit, nil
}
