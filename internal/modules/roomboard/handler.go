package roomboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/jwt"
	"tierraalta/internal/pkg/response"
	"tierraalta/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const EventSnapshot = "room_snapshot"

type roomLister interface {
	List(ctx context.Context, f repository.RoomFilter) ([]domain.Room, error)
}

type tokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   tokenValidator
	rooms    roomLister
	upgrader websocket.Upgrader
}

// NewHandler builds the board endpoint. An empty origins list accepts any
// origin.
func NewHandler(hub *Hub, tokens tokenValidator, rooms roomLister, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		rooms:  rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms/board/ws", h.Serve)
}

// Serve upgrades a staff connection. Browsers cannot set headers on a
// WebSocket handshake, so the token comes in ?token=.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "token query parameter is required")
		return
	}
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if !claims.Principal().Role.IsStaff() {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "only staff can open the room board")
		return
	}

	snapshot, err := h.snapshot(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.hub.log.Debug().Err(err).Int64("user_id", claims.UserID).Msg("room board upgrade failed")
		return
	}
	h.hub.serve(conn, claims.UserID, snapshot)
}

func (h *Handler) snapshot(ctx context.Context) ([]byte, error) {
	rooms, err := h.rooms.List(ctx, repository.RoomFilter{})
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(gin.H{"rooms": rooms})
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: EventSnapshot, Payload: payload, CreatedAt: time.Now()})
}
