package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tallyflow/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loggedRouter(log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func TestLogger_EmitsStructuredEntry(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := loggedRouter(log)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	require.Len(t, hook.AllEntries(), 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, "req-42", e.Data["request_id"])
	assert.Equal(t, http.MethodGet, e.Data["method"])
	assert.Equal(t, "/ping", e.Data["path"])
	assert.Equal(t, http.StatusNoContent, e.Data["status"])
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestLogger_ServerErrorLogsAtErrorLevel(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := loggedRouter(log)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := loggedRouter(log)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
