package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the built dashboard from the configured directory.
// The dashboard is a single-page app, so any non-API route falls back
// to index.html and client-side routing takes over.
func (s *Server) mountStatic() {
	s.engine.NoRoute(s.serveFrontend)

	if s.staticDir == "" {
		s.logger.Info("no static directory configured, serving API only")
		return
	}
	if info, err := os.Stat(s.staticDir); err != nil || !info.IsDir() {
		s.logger.Warn("static directory unusable", "path", s.staticDir, "error", err)
		s.staticDir = ""
		return
	}

	if assets := filepath.Join(s.staticDir, "assets"); dirExists(assets) {
		s.engine.StaticFS("/assets", gin.Dir(assets, false))
	}
	for _, name := range []string{"favicon.ico", "robots.txt"} {
		if path := filepath.Join(s.staticDir, name); fileExists(path) {
			s.engine.StaticFile("/"+name, path)
		}
	}
}

func (s *Server) serveFrontend(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found", "code": "not_found"})
		return
	}
	if s.staticDir == "" {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(filepath.Join(s.staticDir, "index.html"))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
