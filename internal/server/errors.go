package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	achievementdomain "github.com/tonbox-app/tonbox/internal/achievement/domain"
	boosterdomain "github.com/tonbox-app/tonbox/internal/booster/domain"
	nftdomain "github.com/tonbox-app/tonbox/internal/nft/domain"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	referraldomain "github.com/tonbox-app/tonbox/internal/referral/domain"
	taskdomain "github.com/tonbox-app/tonbox/internal/task/domain"
	userdomain "github.com/tonbox-app/tonbox/internal/user/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrRateLimited        = errors.New("too many requests")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ErrorHandlingMiddleware maps domain errors recorded on the gin context
// to JSON responses after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var threshold *taskdomain.ThresholdNotMetError
	if errors.As(err, &threshold) {
		return http.StatusBadRequest, errorPayload{
			Type:    "threshold_not_met",
			Message: threshold.Error(),
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, paymentdomain.ErrPaymentFailed):
		return http.StatusPaymentRequired, errorPayload{
			Type:    "payment_required",
			Message: err.Error(),
		}
	case errors.Is(err, nftdomain.ErrNotEligible),
		errors.Is(err, nftdomain.ErrNotAvailable):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, userdomain.ErrInvalidInput),
		errors.Is(err, referraldomain.ErrCodeFormat),
		errors.Is(err, referraldomain.ErrSelfReferral),
		errors.Is(err, achievementdomain.ErrUnknownAchievement):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, referraldomain.ErrUserNotFound),
		errors.Is(err, referraldomain.ErrInvalidCode),
		errors.Is(err, taskdomain.ErrUserNotFound),
		errors.Is(err, nftdomain.ErrUserNotFound),
		errors.Is(err, nftdomain.ErrCollectionNotFound),
		errors.Is(err, boosterdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, referraldomain.ErrAlreadyReferred),
		errors.Is(err, taskdomain.ErrAlreadyCheckedIn),
		errors.Is(err, taskdomain.ErrAlreadyCompleted),
		errors.Is(err, taskdomain.ErrAlreadyClaimed),
		errors.Is(err, nftdomain.ErrSoldOut),
		errors.Is(err, nftdomain.ErrAlreadyClaimed),
		errors.Is(err, boosterdomain.ErrBoosterActive),
		errors.Is(err, achievementdomain.ErrAlreadyUnlocked),
		errors.Is(err, userdomain.ErrWalletInUse):
		return true
	default:
		return false
	}
}
