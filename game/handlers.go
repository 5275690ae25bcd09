package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/catalog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the allow-list middleware in front of us.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	hub     *Hub
	catalog catalog.Provider
	log     zerolog.Logger
}

func NewHandler(hub *Hub, provider catalog.Provider, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, catalog: provider, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/ws", h.ServeWS)
	r.GET("/players", h.ListPlayers)
}

// ServeWS upgrades the connection, assigns it an opaque id, and hands it
// to the hub. The id is fresh per connection: reconnects are new players.
func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(uuid.NewString(), NewWebsocketSession(conn), h.hub)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// ListPlayers exposes the full catalog, the client's autocomplete source.
func (h *Handler) ListPlayers(ctx *gin.Context) {
	players, err := h.catalog.All(ctx.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("listing players")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, players)
}
