package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (s *Server) ListCollections(c *gin.Context) {
	resp, err := s.nftSvc.Collections(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) NFTStats(c *gin.Context) {
	resp, err := s.nftSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type claimNFTRequest struct {
	UserID       string `json:"user_id"`
	CollectionID string `json:"collection_id"`
	PaymentRef   string `json:"payment_ref"`
}

func (s *Server) ClaimNFT(c *gin.Context) {
	var req claimNFTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID := strings.TrimSpace(req.UserID)
	collectionID := strings.TrimSpace(req.CollectionID)
	if userID == "" || collectionID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}
	if !s.allowClaim(c, userID) {
		return
	}

	// Paid claims are matched to an on-chain transfer by reference comment.
	paymentRef := strings.TrimSpace(req.PaymentRef)
	if paymentRef == "" {
		paymentRef = uuid.NewString()
	}

	resp, err := s.nftSvc.Claim(c.Request.Context(), userID, collectionID, paymentRef)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
