package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
)

func (s *Server) ListAchievements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": achievementdomain.Catalog})
}

func (s *Server) ListUserAchievements(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	unlocked, err := s.achievementSvc.Unlocked(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": unlocked})
}

type unlockAchievementRequest struct {
	UserID        string `json:"user_id"`
	AchievementID string `json:"achievement_id"`
}

func (s *Server) UnlockAchievement(c *gin.Context) {
	var req unlockAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	achievementID := strings.TrimSpace(req.AchievementID)
	if userID == "" || achievementID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.achievementSvc.Unlock(c.Request.Context(), userID, achievementID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unlocked": achievementID}})
}
