package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	taskdomain "github.com/tonbox-app/tonbox/internal/task/domain"
)

type taskRequest struct {
	UserID string `json:"user_id"`
}

func bindTaskRequest(c *gin.Context) (string, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return "", false
	}
	id := strings.TrimSpace(req.UserID)
	if id == "" {
		AbortWithError(c, invalidRequestError())
		return "", false
	}
	return id, true
}

func (s *Server) CheckIn(c *gin.Context) {
	userID, ok := bindTaskRequest(c)
	if !ok {
		return
	}
	if !s.allowCheckIn(c, userID) {
		return
	}

	resp, err := s.taskSvc.CheckIn(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteInviteTask(c *gin.Context) {
	userID, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	resp, err := s.taskSvc.CompleteInviteTask(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteEarlyAdopter(c *gin.Context) {
	userID, ok := bindTaskRequest(c)
	if !ok {
		return
	}

	resp, err := s.taskSvc.CompleteEarlyAdopter(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type walletAnalysisRequest struct {
	UserID            string  `json:"user_id"`
	WalletAge         int     `json:"wallet_age_days"`
	TotalTransactions int     `json:"total_transactions"`
	TotalVolumeTON    float64 `json:"total_volume_ton"`
}

func (s *Server) CompleteWalletAnalysis(c *gin.Context) {
	var req walletAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taskSvc.CompleteWalletAnalysis(c.Request.Context(), strings.TrimSpace(req.UserID), taskdomain.WalletStats{
		WalletAge:         req.WalletAge,
		TotalTransactions: req.TotalTransactions,
		TotalVolumeTON:    req.TotalVolumeTON,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
