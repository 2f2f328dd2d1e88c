package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/carlosvillalobossalas/mejengas-backend/internal/services"
	"github.com/carlosvillalobossalas/mejengas-backend/internal/utils"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/logger"
	"github.com/carlosvillalobossalas/mejengas-backend/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SSEHandler streams live goalkeeper leaderboards over Server-Sent Events.
// Each connection runs its own aggregator; closing the connection tears the
// aggregator and its feed subscriptions down.
type SSEHandler struct {
	keeperService *services.GoalkeeperLiveService
	groupService  *services.GroupService
}

func NewSSEHandler(db *gorm.DB) *SSEHandler {
	return &SSEHandler{
		keeperService: services.NewGoalkeeperLiveService(db),
		groupService:  services.NewGroupService(db),
	}
}

// sseToken reads the JWT from the query string or the Authorization header.
// EventSource clients cannot set headers, so the query form comes first.
func sseToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// StreamGoalkeepers streams leaderboard recomputations for one group
// GET /api/events/groups/:id/goalkeepers
func (h *SSEHandler) StreamGoalkeepers(c *gin.Context) {
	token := sseToken(c)
	if token == "" {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "Invalid token")
		return
	}

	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.RequireMember(groupID, claims.UserID); err != nil {
		groupError(c, err)
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Buffered so a slow client cannot stall the aggregator; the aggregator
	// publishes full snapshots, so dropping an intermediate one is safe.
	updates := make(chan *services.GoalkeeperLeaderboard, 4)
	teardown := h.keeperService.Watch(groupID, func(lb *services.GoalkeeperLeaderboard) {
		select {
		case updates <- lb:
		default:
		}
	})
	defer teardown()

	logger.Info().Uint("group_id", groupID).Uint("user_id", claims.UserID).Msg("goalkeeper stream connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case lb := <-updates:
			data, err := json.Marshal(lb)
			if err != nil {
				logger.Error().Err(err).Msg("SSE marshal error")
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Info().Uint("group_id", groupID).Msg("goalkeeper stream disconnected")
			return false
		}
	})
}
