package statusapi

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
)

// verdictHandler handles GET /sessions/:id/verdict. Returns 404 if the
// session's verdict.json does not exist yet (session still running or
// unknown ID), 200 with the verdict body once it has been written.
func (s *Server) verdictHandler(c *gin.Context) {
	id := c.Param("id")

	v, err := s.readVerdict(id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "verdict not found for session " + id})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, v)
}

// SessionVerdictReader returns a VerdictReader backed by the real
// filesystem layout under artifactsRoot: aav3_<id>/verdict.json. Open
// creates the directory tree as a side effect if it's missing, so a lookup
// for an unknown session ID still fails cleanly on the missing verdict.json
// rather than on a missing directory.
func SessionVerdictReader(artifactsRoot string) VerdictReader {
	return func(sessionID string) (sessionstore.Verdict, error) {
		store, err := sessionstore.Open(artifactsRoot, sessionID)
		if err != nil {
			return sessionstore.Verdict{}, err
		}
		return store.ReadVerdict()
	}
}
