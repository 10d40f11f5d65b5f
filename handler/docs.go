package handler

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec []byte

//go:embed swagger-ui.html
var swaggerUIPage []byte

// SwaggerUIPath is where the interactive docs page is served.
const SwaggerUIPath = "/swagger-ui/index.html"

// DocsHandler serves the OpenAPI document for the contract routes.
type DocsHandler struct {
	raw  []byte
	json map[string]any
}

// NewDocsHandler parses the embedded document.
func NewDocsHandler() (*DocsHandler, error) {
	return newDocsHandler(openAPISpec)
}

func newDocsHandler(raw []byte) (*DocsHandler, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if _, ok := doc["openapi"]; !ok {
		return nil, fmt.Errorf("openapi document has no version field")
	}
	return &DocsHandler{raw: raw, json: doc}, nil
}

// JSON handles GET /api-docs
func (h *DocsHandler) JSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.json)
}

// YAML handles GET /api-docs/openapi.yaml
func (h *DocsHandler) YAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", h.raw)
}

// UI handles GET /swagger-ui/index.html
func (h *DocsHandler) UI(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", swaggerUIPage)
}

// RedirectUI sends bare /swagger-ui requests to the page.
func (h *DocsHandler) RedirectUI(c *gin.Context) {
	c.Redirect(http.StatusMovedPermanently, SwaggerUIPath)
}
