package ads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hourskill/internal/api"
	"hourskill/internal/auth"
	"hourskill/internal/logger"
	"hourskill/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Reward godoc
// @Summary      Claim an ad-view reward
// @Description  Credits 0.50 TC. Claims within 30 seconds of the previous one are rejected and lower the trust score.
// @Tags         ads
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  RewardResponse
// @Failure      429  {object}  api.ErrorResponse
// @Router       /ads/reward [post]
func (h *Handler) Reward(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	receipt, err := h.service.Reward(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			c.Header("Retry-After", "30")
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "please wait before claiming another reward"})
		case errors.Is(err, wallet.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "wallet not found"})
		default:
			logger.Error("ad reward failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to credit reward"})
		}
		return
	}

	c.JSON(http.StatusOK, RewardResponse{NewBalance: receipt.Balances[userID]})
}
