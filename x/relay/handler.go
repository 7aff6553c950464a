package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/xid"

	"github.com/poorbengunn/nostr-dojo/core"
	"github.com/poorbengunn/nostr-dojo/x/util"
)

// Handler owns the websocket endpoint. One goroutine per connection reads
// frames; responses and fan-out writes share the connection's write lock.
type Handler struct {
	service Service
	manager Manager
	config  util.Config
}

func NewHandler(service Service, manager Manager, config util.Config) *Handler {
	return &Handler{service, manager, config}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h Handler) CurrentConnectionCount() int64 {
	return h.manager.CurrentConnectionCount()
}

func (h Handler) CurrentSubscriptionCount() int64 {
	return h.manager.CurrentSubscriptionCount()
}

// InfoDocument serves the relay information document for plain HTTP
// requests on the websocket route.
func (h Handler) InfoDocument(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name":        h.config.Relay.Name,
		"description": h.config.Relay.Description,
		"pubkey":      h.config.Relay.Pubkey,
		"supported_kinds": []int{
			h.config.Kinds.SchemaDefinition,
			h.config.Kinds.CredentialGrant,
			h.config.Kinds.Revocation,
			h.config.Kinds.Renewal,
		},
	})
}

// Connect upgrades the connection and runs the frame loop until the client
// goes away. Errors on one connection never propagate past it.
func (h Handler) Connect(c echo.Context) error {
	if c.Request().Header.Get("Upgrade") == "" {
		return h.InfoDocument(c)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Debug("failed to upgrade websocket", slog.String("error", err.Error()))
		return nil
	}

	connID := xid.New().String()
	conn := NewConnection(ws)
	h.manager.Register(conn)

	defer func() {
		h.manager.Unregister(conn)
		ws.Close()
	}()

	ws.SetReadLimit(h.config.Relay.MaxMessageSize)

	ctx := c.Request().Context()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			slog.Debug("connection closed",
				slog.String("conn", connID), slog.String("error", err.Error()))
			return nil
		}

		label, operands, err := parseFrame(data)
		if err != nil {
			conn.WriteJSON([]any{MessageNotice, "could not parse message"})
			continue
		}

		switch label {
		case MessageEvent:
			h.handleEvent(ctx, conn, operands)
		case MessageReq:
			h.handleReq(ctx, conn, operands)
		case MessageClose:
			h.handleClose(conn, operands)
		default:
			conn.WriteJSON([]any{MessageNotice, "unknown message type: " + label})
		}
	}
}

func (h Handler) handleEvent(ctx context.Context, conn *Connection, operands []json.RawMessage) {
	if len(operands) != 1 {
		conn.WriteJSON([]any{MessageNotice, "could not parse message"})
		return
	}

	var ev core.Event
	err := json.Unmarshal(operands[0], &ev)
	if err != nil {
		conn.WriteJSON([]any{MessageNotice, "could not parse event"})
		return
	}

	accepted, reason := h.service.Submit(ctx, ev)
	conn.WriteJSON([]any{MessageOK, ev.ID, accepted, reason})
}

func (h Handler) handleReq(ctx context.Context, conn *Connection, operands []json.RawMessage) {
	if len(operands) < 2 {
		conn.WriteJSON([]any{MessageNotice, "could not parse message"})
		return
	}

	var subID string
	err := json.Unmarshal(operands[0], &subID)
	if err != nil || subID == "" {
		conn.WriteJSON([]any{MessageNotice, "could not parse subscription id"})
		return
	}

	rawFilters := operands[1:]
	if len(rawFilters) > h.config.Relay.MaxFilters {
		conn.WriteJSON([]any{MessageClosed, subID, "unsupported: too many filters"})
		return
	}
	if len(conn.subs) >= h.config.Relay.MaxSubsPerConn {
		conn.WriteJSON([]any{MessageClosed, subID, "unsupported: too many subscriptions"})
		return
	}

	filters := make([]core.Filter, 0, len(rawFilters))
	for _, raw := range rawFilters {
		var f core.Filter
		err := json.Unmarshal(raw, &f)
		if err != nil {
			conn.WriteJSON([]any{MessageClosed, subID, "invalid: malformed filter"})
			return
		}
		filters = append(filters, f)
	}

	// register before the stored query so no event falls between
	h.manager.Subscribe(conn, subID, filters)

	stored, err := h.service.Query(ctx, filters)
	if err != nil {
		h.manager.Unsubscribe(conn, subID)
		conn.WriteJSON([]any{MessageClosed, subID, "error: could not query events"})
		return
	}

	for _, ev := range stored {
		conn.WriteJSON([]any{MessageEvent, subID, ev})
	}
	conn.WriteJSON([]any{MessageEOSE, subID})
}

func (h Handler) handleClose(conn *Connection, operands []json.RawMessage) {
	if len(operands) != 1 {
		conn.WriteJSON([]any{MessageNotice, "could not parse message"})
		return
	}

	var subID string
	err := json.Unmarshal(operands[0], &subID)
	if err != nil {
		conn.WriteJSON([]any{MessageNotice, "could not parse subscription id"})
		return
	}

	h.manager.Unsubscribe(conn, subID)
	conn.WriteJSON([]any{MessageClosed, subID, ""})
}
