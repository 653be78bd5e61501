package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// apiKeyAuth requires the Authorization header to equal key on every route
// except the root liveness check. An empty key disables the check.
func apiKeyAuth(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		if key == "" || c.Request.URL.Path == "/" {
			c.Next()
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader("Authorization")), want) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "Forbidden",
				Code:  "FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = "Content-Type, Authorization"
	corsMaxAge  = strconv.Itoa(int((24 * time.Hour).Seconds()))
)

// cors answers browser preflights and tags responses for allowed origins.
// It runs before apiKeyAuth because preflights never carry credentials.
// "*" in origins allows any origin; an empty list disables CORS.
func cors(origins []string) gin.HandlerFunc {
	anyOrigin := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := origin != "" && (anyOrigin || slices.Contains(origins, origin))

		if allowed {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}

		// Only preflights stop here; plain OPTIONS requests fall through.
		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			if allowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
