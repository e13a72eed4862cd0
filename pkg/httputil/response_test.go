package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query     string
		skip      int
		limit     int
		wantField string
	}{
		{"", 0, DefaultLimit, ""},
		{"?skip=5&limit=20", 5, 20, ""},
		{"?limit=0", 0, 0, ""},
		{"?limit=1000", 0, MaxLimit, ""},
		{"?skip=-1", 0, 0, "skip"},
		{"?limit=abc", 0, 0, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := testContext("/" + tt.query)
			skip, limit, err := ParsePagination(c)
			if tt.wantField != "" {
				appErr, ok := apperrors.As(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantField, appErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.skip, skip)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
		wantField  string
	}{
		{"duplicate booking", apperrors.DuplicateBooking(1, 2, time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)), http.StatusConflict, "", "dateTime"},
		{"invalid reference", apperrors.InvalidReference("doctorId", 9), http.StatusBadRequest, "", "doctorId"},
		{"store unavailable", apperrors.StoreUnavailable(errors.New("dial tcp: refused")), http.StatusServiceUnavailable, "Service Unavailable", ""},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, "Internal Server Error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext("/")
			RespondWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantField, resp.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
			assert.NotContains(t, w.Body.String(), "refused")
			assert.NotContains(t, w.Body.String(), "secret detail")
		})
	}
}
