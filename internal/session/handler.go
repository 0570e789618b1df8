package session

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

// Ping godoc
// @Summary      Heartbeat for a watch session
// @Description  Adds ten seconds of watch time to a session owned by the caller.
// @Tags         sessions
// @Security     BearerAuth
// @Produce      json
// @Param        sessionID  path  int  true  "Session ID"
// @Success      200  {object}  PingResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sessions/{sessionID}/ping [post]
func (h *Handler) Ping(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil || sessionID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid sessionID"})
		return
	}

	watched, err := h.service.Ping(c.Request.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "session not found"})
			return
		}
		logger.Error("failed to record heartbeat", "session_id", sessionID, "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to record heartbeat"})
		return
	}

	c.JSON(http.StatusOK, PingResponse{WatchedSeconds: watched})
}
