package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage, total, pages int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{2, 10, 21, 3},
		{1, 0, 5, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.perPage, tt.total)
		assert.Equal(t, tt.pages, p.TotalPages, "%d items / %d", tt.total, tt.perPage)
		assert.Equal(t, tt.total, p.TotalItems)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { Fail(c, http.StatusNotFound, ErrNotFound) })

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"adopts client id", "abc-123_x.y", true},
		{"replaces missing id", "", false},
		{"replaces id with spaces", "a b", false},
		{"replaces overlong id", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if tt.keep {
				assert.Equal(t, tt.header, got)
			} else {
				assert.NotEqual(t, tt.header, got)
				assert.Len(t, got, 36)
			}

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, got, body.Metadata.RequestID)
			require.NotNil(t, body.Error)
			assert.Equal(t, ErrNotFound, body.Error.Code)
			assert.Equal(t, GetMessage(ErrNotFound), body.Error.Message)
		})
	}
}
