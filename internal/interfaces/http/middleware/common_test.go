package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/items", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSWithConfig(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://app.mizan.example"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}

	t.Run("sets headers for a whitelisted origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("Origin", "https://app.mizan.example")
		corsRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.mizan.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("omits headers for an unknown origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("Origin", "https://evil.example")
		corsRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("empty whitelist serves without CORS headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		corsRouter(CORSConfig{}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight for allowed origin returns 204 with headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/items", nil)
		req.Header.Set("Origin", "https://app.mizan.example")
		corsRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.mizan.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight for unknown origin still returns 204", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("OPTIONS", "/items", nil)
		req.Header.Set("Origin", "https://evil.example")
		corsRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard allows any origin without credentials header", func(t *testing.T) {
		wildcard := cfg
		wildcard.AllowOrigins = []string{"*"}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/items", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		corsRouter(wildcard).ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRequestID(t *testing.T) {
	newRouter := func() (*gin.Engine, *string) {
		var seen string
		router := gin.New()
		router.Use(RequestID())
		router.GET("/counts", func(c *gin.Context) {
			seen = c.GetString("request_id")
			c.String(http.StatusOK, "ok")
		})
		return router, &seen
	}

	t.Run("generates an ID when none supplied", func(t *testing.T) {
		router, seen := newRouter()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/counts", nil))

		assert.NotEmpty(t, *seen)
		assert.Equal(t, *seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("honors an inbound X-Request-ID", func(t *testing.T) {
		router, seen := newRouter()

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/counts", nil)
		req.Header.Set("X-Request-ID", "upstream-77")
		router.ServeHTTP(w, req)

		assert.Equal(t, "upstream-77", *seen)
		assert.Equal(t, "upstream-77", w.Header().Get("X-Request-ID"))
	})

	t.Run("IDs are unique across requests", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/counts", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		ids := make(map[string]bool)
		for i := 0; i < 20; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/counts", nil))
			ids[w.Header().Get("X-Request-ID")] = true
		}
		assert.Len(t, ids, 20)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/items", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/items", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Contains(t, w.Header().Get("Permissions-Policy"), "camera=()")
}
