package modules

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, register func(rg *gin.RouterGroup), path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r.Group("/"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthWithoutStore(t *testing.T) {
	w := serve(t, NewHealthModule(nil).Register, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
			Mongo  string `json:"mongo"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data.Status)
	assert.Equal(t, "disabled", body.Data.Mongo)
}

func TestDebugVars(t *testing.T) {
	w := serve(t, NewDebugModule(nil, nil).Register, "/debug/vars")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memstats")
}
