package video

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hourskill/internal/api"
	"hourskill/internal/auth"
	"hourskill/internal/logger"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// ListVideos godoc
// @Summary      List active videos
// @Tags         videos
// @Produce      json
// @Param        limit   query  int  false  "Page size (max 100)"
// @Param        offset  query  int  false  "Offset"
// @Success      200  {array}  Video
// @Router       /videos [get]
func (h *Handler) ListVideos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	videos, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		logger.Error("failed to list videos", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list videos"})
		return
	}

	c.JSON(http.StatusOK, videos)
}

// CreateVideo godoc
// @Summary      Publish a video
// @Tags         videos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateVideoRequest  true  "Video metadata"
// @Success      201      {object}  Video
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /videos [post]
func (h *Handler) CreateVideo(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	var req CreateVideoRequest
	if !api.BindJSON(c, &req) {
		return
	}

	v, err := h.service.Create(c.Request.Context(), creatorID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		logger.Error("failed to create video", "creator_id", creatorID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create video"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// DeleteVideo godoc
// @Summary      Deactivate a video owned by the caller
// @Tags         videos
// @Security     BearerAuth
// @Param        videoID  path  int  true  "Video ID"
// @Success      200  {object}  api.MessageResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /videos/{videoID} [delete]
func (h *Handler) DeleteVideo(c *gin.Context) {
	creatorID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	id, ok := ParseID(c, "videoID")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id, creatorID); err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "video not found"})
			return
		}
		logger.Error("failed to deactivate video", "video_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete video"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "video deactivated"})
}
