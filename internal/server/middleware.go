package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminRequired gates the admin surface behind the static bearer token.
// With no token configured the surface is disabled entirely.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.cfg.AdminToken
		if token == "" {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(presented)), []byte(token)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}

func (s *Server) allowCheckIn(c *gin.Context, userID string) bool {
	ok, err := s.limiter.AllowCheckIn(c.Request.Context(), userID)
	if err != nil {
		s.log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if !ok {
		AbortWithError(c, ErrRateLimited)
		return false
	}
	return true
}

func (s *Server) allowClaim(c *gin.Context, userID string) bool {
	ok, err := s.limiter.AllowClaim(c.Request.Context(), userID)
	if err != nil {
		s.log.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if !ok {
		AbortWithError(c, ErrRateLimited)
		return false
	}
	return true
}
