package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware adds CORS headers for the browser frontend.
//
// Origins are whitelisted strictly:
// - Production: only the published site domains
// - Development: localhost (disabled in release mode)
// - Vercel previews: only ideadaily-* prefixed subdomains
func CORSMiddleware() gin.HandlerFunc {
	isProduction := os.Getenv("GIN_MODE") == "release"

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		productionOrigins := map[string]bool{
			"https://www.ideadaily.app": true,
			"https://ideadaily.app":     true,
		}

		devOrigins := map[string]bool{
			"http://localhost:3000": true,
			"http://127.0.0.1:3000": true,
			"http://localhost:3001": true,
		}

		var isAllowed bool

		if productionOrigins[origin] {
			isAllowed = true
		}

		if !isProduction && devOrigins[origin] {
			isAllowed = true
		}

		// Vercel preview deployments, restricted to our project prefix so a
		// malicious-ideadaily.vercel.app lookalike is not let through.
		if !isAllowed && strings.HasSuffix(origin, ".vercel.app") {
			subdomain := strings.TrimPrefix(origin, "https://")
			subdomain = strings.TrimSuffix(subdomain, ".vercel.app")

			if strings.HasPrefix(subdomain, "ideadaily") ||
				strings.Contains(subdomain, "-ideadaily-") {
				isAllowed = true
			}
		}

		// Same-origin requests carry no Origin header.
		if origin == "" {
			isAllowed = true
		}

		if isAllowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			c.Header("Access-Control-Max-Age", "86400")
		}

		c.Header("Vary", "Origin")

		if c.Request.Method == "OPTIONS" {
			if isAllowed {
				c.AbortWithStatus(204)
			} else {
				c.AbortWithStatus(403)
			}
			return
		}

		c.Next()
	}
}
