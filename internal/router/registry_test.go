package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func pingModule(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func get(r *Registry, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRegistryMountsModulesAtRoot(t *testing.T) {
	reg := NewRegistry(gin.New(), "")
	reg.Use(func(c *gin.Context) {
		c.Set("mw", "applied")
		c.Next()
	})
	reg.Add(ModuleFunc(pingModule))
	reg.RegisterAll()

	w := get(reg, "/ping")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "applied", w.Body.String())

	require.Equal(t, http.StatusNotFound, get(reg, "/api/ping").Code)
}

func TestRegistryWithPrefix(t *testing.T) {
	reg := NewRegistry(gin.New(), "api/")
	reg.Add(ModuleFunc(pingModule))
	reg.RegisterAll()

	require.Equal(t, http.StatusOK, get(reg, "/api/ping").Code)
	require.Equal(t, http.StatusNotFound, get(reg, "/ping").Code)
}

func TestNormalizePrefix(t *testing.T) {
	for in, want := range map[string]string{
		"":       "/",
		" / ":    "/",
		"api":    "/api",
		"/api/":  "/api",
		"/v1/x/": "/v1/x",
	} {
		assert.Equal(t, want, normalizePrefix(in), in)
	}
}
