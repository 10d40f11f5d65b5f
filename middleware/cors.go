package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/RaghavGalappanavar/Deployment/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Path prefixes that receive a CORS policy. Anything else is left alone.
var (
	APIPathPrefixes  = []string{"/v1/"}
	DocsPathPrefixes = []string{"/api-docs", "/swagger-ui"}
)

// ExposedHeaders are readable by browser clients on API responses.
var ExposedHeaders = []string{"Content-Disposition", "Content-Type", "Content-Length", HeaderRequestID, HeaderTraceID}

var docsMethods = []string{"GET", "OPTIONS"}

// CORS builds the API and docs policies from cfg and dispatches on the
// request path. It runs at router level so preflights for unmatched
// OPTIONS routes still get answered.
func CORS(cfg config.CORSConfig) (gin.HandlerFunc, error) {
	api, err := newCORSPolicy(cfg, cfg.AllowedMethods)
	if err != nil {
		return nil, err
	}
	docs, err := newCORSPolicy(cfg, docsMethods)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		switch {
		case hasAnyPrefix(path, APIPathPrefixes):
			api.apply(c)
		case hasAnyPrefix(path, DocsPathPrefixes):
			docs.apply(c)
		default:
			c.Next()
		}
	}, nil
}

type corsPolicy struct {
	handler gin.HandlerFunc
	// anyHeader echoes Access-Control-Request-Headers on preflights. A
	// literal "*" is not a wildcard for credentialed requests.
	anyHeader bool
}

func newCORSPolicy(cfg config.CORSConfig, methods []string) (*corsPolicy, error) {
	out, anyHeader, err := corsConfig(cfg, methods)
	if err != nil {
		return nil, err
	}
	return &corsPolicy{handler: cors.New(out), anyHeader: anyHeader}, nil
}

func (p *corsPolicy) apply(c *gin.Context) {
	if p.anyHeader && c.Request.Method == http.MethodOptions && c.GetHeader("Origin") != "" {
		if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
			c.Header("Access-Control-Allow-Headers", requested)
		}
	}
	p.handler(c)
}

func corsConfig(cfg config.CORSConfig, methods []string) (cors.Config, bool, error) {
	out := cors.Config{
		AllowMethods:     append([]string(nil), methods...),
		ExposeHeaders:    append([]string(nil), ExposedHeaders...),
		AllowCredentials: cfg.Credentials(),
		MaxAge:           12 * time.Hour,
	}

	anyHeader := false
	for _, h := range cfg.AllowedHeaders {
		if strings.TrimSpace(h) == "*" {
			anyHeader = true
			break
		}
	}
	if !anyHeader {
		out.AllowHeaders = append([]string(nil), cfg.AllowedHeaders...)
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			// Reflect the caller's origin; a literal "*" is rejected by
			// browsers once credentials are allowed.
			out.AllowOrigins = nil
			out.AllowOriginFunc = func(string) bool { return true }
			return out, anyHeader, nil
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return cors.Config{}, false, fmt.Errorf("invalid CORS origin %q: must start with http:// or https://", origin)
		}
		out.AllowOrigins = append(out.AllowOrigins, strings.TrimSuffix(origin, "/"))
	}
	if len(out.AllowOrigins) == 0 {
		return cors.Config{}, false, fmt.Errorf("at least one CORS origin is required")
	}
	return out, anyHeader, nil
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// CacheControl disables caching of API responses and lets docs be cached briefly.
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if hasAnyPrefix(path, APIPathPrefixes) {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
			return
		}

		if hasAnyPrefix(path, DocsPathPrefixes) {
			c.Header("Cache-Control", "public, max-age=300")
		}

		c.Next()
	}
}
