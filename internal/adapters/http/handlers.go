package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/githubayushraj/My-Lobby-Backend/internal/adapters/janus"
	"github.com/githubayushraj/My-Lobby-Backend/internal/app"
)

type CreateMeetingRequest struct {
	Description string `json:"description" binding:"max=256"`
}

type JoinMeetingResponse struct {
	IsValid     bool   `json:"isValid"`
	JanusRoomID int64  `json:"janusRoomId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// mediaStatus maps media plane failures to a status code.
func mediaStatus(err error) int {
	if errors.Is(err, janus.ErrNotConfigured) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func (h *handlers) createMeeting(c *gin.Context) {
	var req CreateMeetingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	room, err := h.meetings.CreateMeeting(c.Request.Context(), req.Description)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create meeting")
		c.JSON(mediaStatus(err), gin.H{"error": "could not create meeting"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *handlers) joinMeeting(c *gin.Context) {
	room, err := h.meetings.FindMeeting(c.Request.Context(), c.Param("friendlyId"))
	switch {
	case errors.Is(err, app.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, JoinMeetingResponse{IsValid: false, Error: "Room not found"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("join meeting")
		c.JSON(http.StatusInternalServerError, JoinMeetingResponse{IsValid: false, Error: "An unexpected server error occurred."})
	default:
		c.JSON(http.StatusOK, JoinMeetingResponse{IsValid: true, JanusRoomID: room.MediaRoomID})
	}
}

func (h *handlers) createMediaRoom(c *gin.Context) {
	id, err := h.meetings.AllocateMediaRoom(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create media room")
		c.JSON(mediaStatus(err), gin.H{"error": "could not create media room"})
		return
	}
	c.JSON(http.StatusOK, id)
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": h.ice})
}

func (h *handlers) rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *handlers) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connections": h.orch.Registry.Count(),
		"rooms":       len(h.orch.Rooms.List()),
		"counters":    h.orch.Metrics.Snapshot(),
	})
}
