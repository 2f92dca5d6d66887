package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type applyReferralRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

func (s *Server) ApplyReferralCode(c *gin.Context) {
	var req applyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.referralSvc.ApplyReferralCode(c.Request.Context(), strings.TrimSpace(req.UserID), strings.TrimSpace(req.Code))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReferralHistory(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	records, err := s.referralSvc.History(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) ListReferralTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.rewards.Get().Tiers})
}
