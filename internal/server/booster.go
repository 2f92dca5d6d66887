package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type purchaseBoosterRequest struct {
	UserID     string `json:"user_id"`
	PaymentRef string `json:"payment_ref"`
}

func (s *Server) PurchaseBooster(c *gin.Context) {
	var req purchaseBoosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}
	if !s.allowClaim(c, userID) {
		return
	}

	paymentRef := strings.TrimSpace(req.PaymentRef)
	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}

	resp, err := s.boosterSvc.Purchase(c.Request.Context(), userID, paymentRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BoosterStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.boosterSvc.Status(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
