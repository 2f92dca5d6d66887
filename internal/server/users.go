package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

type createUserRequest struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PhotoURL      string `json:"photo_url"`
	WalletAddress string `json:"wallet_address"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.Create(c.Request.Context(), userdomain.CreateRequest{
		ID:            strings.TrimSpace(req.ID),
		Username:      strings.TrimSpace(req.Username),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PhotoURL:      strings.TrimSpace(req.PhotoURL),
		WalletAddress: strings.TrimSpace(req.WalletAddress),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
