// Package statusapi is a minimal read-only HTTP surface over a session's
// artifacts_dir: a liveness probe and a verdict lookup. It owns nothing —
// every response is a pass-through read of what pkg/sessionstore already
// wrote to disk.
package statusapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

// VerdictReader locates the on-disk verdict for a session ID. In
// production this is backed by sessionstore.Open(artifactsRoot,
// id).ReadVerdict; tests supply a stub.
type VerdictReader func(sessionID string) (sessionstore.Verdict, error)

// Server is the status HTTP server.
type Server struct {
	engine        *gin.Engine
	artifactsRoot string
	readVerdict   VerdictReader
}

// NewServer builds a status server reading verdicts from artifactsRoot via
// sessionstore.Open/ReadVerdict. readVerdict is injected so tests can stub
// the filesystem lookup.
func NewServer(artifactsRoot string, readVerdict VerdictReader) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())

	s := &Server{engine: e, artifactsRoot: artifactsRoot, readVerdict: readVerdict}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.healthHandler)
	s.engine.GET("/sessions/:id/verdict", s.verdictHandler)
}

// Engine exposes the underlying gin.Engine, e.g. for httptest.NewServer or
// ServeHTTP in tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run starts the HTTP server, blocking until it exits or fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
