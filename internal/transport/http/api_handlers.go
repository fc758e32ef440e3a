package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akimpr/roomrelay-server/internal/core"
	"github.com/akimpr/roomrelay-server/internal/proto"
)

// ErrorResponse is the JSON body for REST errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomHandlers provides read-only REST endpoints over hub state.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{hub: hub, log: logger}
}

// ListRooms returns a snapshot of all active rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	snapshots, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.Room, 0, len(snapshots))
	for _, snap := range snapshots {
		response = append(response, roomFromSnapshot(snap))
	}

	h.log.Debug().Int("room_count", len(response)).Msg("rooms listed")
	c.JSON(http.StatusOK, response)
}
