package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

const (
	defaultAdminPageSize = 50
	maxAdminPageSize     = 200
)

func (s *Server) AdminListUsers(c *gin.Context) {
	offset := 0
	limit := defaultAdminPageSize

	if raw := strings.TrimSpace(c.Query("offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			AbortWithError(c, invalidRequestError())
			return
		}
		offset = n
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			AbortWithError(c, invalidRequestError())
			return
		}
		limit = n
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}

	resp, err := s.userSvc.List(c.Request.Context(), userdomain.ListRequest{
		Offset: offset,
		Limit:  limit,
		Query:  strings.TrimSpace(c.Query("q")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustPointsRequest struct {
	Delta int64 `json:"delta"`
}

func (s *Server) AdminAdjustPoints(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req adjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Delta == 0 {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.AdjustPoints(c.Request.Context(), id, req.Delta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminDeleteUser(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	if err := s.userSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": id}})
}

func (s *Server) AdminRecentReferrals(c *gin.Context) {
	limit := defaultAdminPageSize
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			AbortWithError(c, invalidRequestError())
			return
		}
		limit = n
	}
	if limit > maxAdminPageSize {
		limit = maxAdminPageSize
	}

	records, err := s.referralSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

type updateCollectionRequest struct {
	Available *bool `json:"available"`
	Remaining *int  `json:"remaining"`
}

func (s *Server) AdminUpdateCollection(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req updateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Available == nil && req.Remaining == nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.nftSvc.UpdateCollection(c.Request.Context(), id, nftdomain.UpdateCollectionRequest{
		Available: req.Available,
		Remaining: req.Remaining,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AdminLeaderboardRollup(c *gin.Context) {
	if err := s.leaderboardSvc.Rollup(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "ok"}})
}
