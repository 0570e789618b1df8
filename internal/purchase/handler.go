package purchase

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hourskill/internal/api"
	"hourskill/internal/auth"
	"hourskill/internal/logger"
	"hourskill/internal/video"
	"hourskill/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetVideo godoc
// @Summary      Video detail for the caller
// @Description  Returns the caller's watch session; free videos are unlocked on first fetch.
// @Tags         videos
// @Security     BearerAuth
// @Produce      json
// @Param        videoID  path  int  true  "Video ID"
// @Success      200  {object}  Detail
// @Failure      404  {object}  api.ErrorResponse
// @Router       /videos/{videoID} [get]
func (h *Handler) GetVideo(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	videoID, ok := video.ParseID(c, "videoID")
	if !ok {
		return
	}

	d, err := h.service.Detail(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err, userID, videoID)
		return
	}

	c.JSON(http.StatusOK, d)
}

// Unlock godoc
// @Summary      Unlock a video
// @Description  Pays the video price in TC to its creator and unlocks it for the caller.
// @Tags         videos
// @Security     BearerAuth
// @Produce      json
// @Param        videoID  path  int  true  "Video ID"
// @Success      200  {object}  UnlockResult
// @Failure      402  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /videos/{videoID}/unlock [post]
func (h *Handler) Unlock(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	videoID, ok := video.ParseID(c, "videoID")
	if !ok {
		return
	}

	res, err := h.service.Unlock(c.Request.Context(), userID, videoID)
	if err != nil {
		respondError(c, err, userID, videoID)
		return
	}

	c.JSON(http.StatusOK, res)
}

func respondError(c *gin.Context, err error, userID, videoID int) {
	switch {
	case errors.Is(err, video.ErrVideoNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "video not found"})
	case errors.Is(err, wallet.ErrWalletNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "wallet not found"})
	case errors.Is(err, ErrAlreadyUnlocked):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		logger.Error("video purchase failed", "user_id", userID, "video_id", videoID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
