package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	portssvc "github.com/sendmoni/rates-backend/internal/core/ports/services"
	"github.com/sendmoni/rates-backend/internal/dto"
	"github.com/sendmoni/rates-backend/internal/feed"
	"github.com/sendmoni/rates-backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is enforced upstream of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHandler serves the live rates subscription channel.
type wsHandler struct {
	hub         *feed.Hub
	rateService portssvc.RateSvcFacade
}

func newWSHandler(hub *feed.Hub, rs portssvc.RateSvcFacade) *wsHandler {
	return &wsHandler{hub: hub, rateService: rs}
}

// subscribe upgrades the connection, joins the broadcast group and pushes a
// full snapshot immediately. Clients may then request get_all_rates or
// get_rate; malformed messages are ignored without closing the connection.
func (h *wsHandler) subscribe(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := feed.NewClient(conn)
	h.hub.Register(client)
	go client.WritePump()

	// New subscribers pull current state through the query path; the feed
	// itself only carries invalidation signals.
	h.sendAllRates(c.Request.Context(), client)

	defer h.hub.Unregister(client)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg dto.ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "get_all_rates":
			h.sendAllRates(c.Request.Context(), client)
		case "get_rate":
			if msg.SourceCurrency != "" && msg.DestinationCurrency != "" {
				h.sendRate(c.Request.Context(), client, msg.SourceCurrency, msg.DestinationCurrency)
			}
		}
	}
}

func (h *wsHandler) sendAllRates(ctx context.Context, client *feed.Client) {
	matrix, err := h.rateService.GetRatesMatrix(ctx)
	if err != nil {
		slog.Warn("Failed to build rates snapshot", slog.String("error", err.Error()))
		matrix = map[string]dto.ProviderQuoteResponse{}
	}
	h.push(client, dto.FeedAllRates, matrix)
}

func (h *wsHandler) sendRate(ctx context.Context, client *feed.Client, source, destination string) {
	payload, err := h.rateService.GetRate(ctx, source, destination)
	if err != nil {
		// Unknown pairs are simply not answered, mirroring the feed's
		// best-effort delivery.
		return
	}
	h.push(client, dto.FeedRate, payload)
}

func (h *wsHandler) push(client *feed.Client, eventType string, data any) {
	rawData, err := json.Marshal(data)
	if err != nil {
		return
	}
	raw, err := json.Marshal(dto.FeedEvent{Type: eventType, Data: rawData})
	if err != nil {
		return
	}
	client.Send(raw)
}
