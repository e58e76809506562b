// Package web provides an HTTP status server for the hotdog daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/sweeney/hotdog/internal/status"
)

// LogFiles lists the daily log files available for download.
type LogFiles interface {
	Dir() string
	Files() ([]string, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	tracker    *status.Tracker
	logs       LogFiles
}

// New creates a Server that reads state from the given tracker. logs may be
// nil, which disables the /logs routes.
func New(addr string, tracker *status.Tracker, logs LogFiles) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, tracker: tracker, logs: logs}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: engine,
	}
	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/index.html", s.handleIndex)
	s.engine.GET("/index.json", s.handleJSON)
	if s.logs != nil {
		s.engine.GET("/logs", s.handleLogList)
		s.engine.GET("/logs/:name", s.handleLogFile)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.tracker.Snapshot()
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	renderHTML(c.Writer, snap)
}

func (s *Server) handleJSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleLogList(c *gin.Context) {
	files, err := s.logs.Files()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"dir": s.logs.Dir(), "files": files})
}

func (s *Server) handleLogFile(c *gin.Context) {
	name := c.Param("name")
	files, err := s.logs.Files()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Only names the manager itself reports are served.
	for _, f := range files {
		if f == name {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.File(filepath.Join(s.logs.Dir(), f))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "log file not found"})
}
