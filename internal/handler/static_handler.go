package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/course-portal-api/pkg/errors"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

// StaticHandler serves the single page front end for unmatched routes.
type StaticHandler struct {
	root      string
	apiPrefix string
}

// NewStaticHandler constructs a StaticHandler rooted at dir.
func NewStaticHandler(dir, apiPrefix string) *StaticHandler {
	return &StaticHandler{root: dir, apiPrefix: apiPrefix}
}

// NoRoute serves files under root and falls back to index.html. Unknown API
// paths get a JSON 404 instead.
func (h *StaticHandler) NoRoute(c *gin.Context) {
	reqPath := c.Request.URL.Path
	if h.apiPrefix != "" && strings.HasPrefix(reqPath, h.apiPrefix) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
		return
	}

	clean := path.Clean("/" + reqPath)
	candidate := filepath.Join(h.root, filepath.FromSlash(clean))
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		c.File(candidate)
		return
	}

	index := filepath.Join(h.root, "index.html")
	if _, err := os.Stat(index); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
		return
	}
	c.File(index)
}
