package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avoronov/pricedrop/internal/bot"
)

// EventBot handles decoded messenger events.
type EventBot interface {
	HandleMessage(ctx context.Context, msg bot.Message) error
	HandleCallback(ctx context.Context, cb bot.Callback) error
}

// EventsHandler receives VK Callback API events: endpoint confirmation,
// new messages, and callback button presses.
type EventsHandler struct {
	bot          EventBot
	confirmation string
	secret       string
	log          *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(b EventBot, confirmation, secret string, log *slog.Logger) *EventsHandler {
	return &EventsHandler{bot: b, confirmation: confirmation, secret: secret, log: log}
}

// vkEvent is the envelope VK posts to the callback endpoint.
type vkEvent struct {
	Type    string          `json:"type"`
	Secret  string          `json:"secret"`
	Object  json.RawMessage `json:"object"`
	GroupID int64           `json:"group_id"`
}

type vkMessageNew struct {
	Message struct {
		FromID int64  `json:"from_id"`
		PeerID int64  `json:"peer_id"`
		Text   string `json:"text"`
	} `json:"message"`
}

type vkMessageEvent struct {
	EventID               string          `json:"event_id"`
	UserID                int64           `json:"user_id"`
	PeerID                int64           `json:"peer_id"`
	ConversationMessageID int64           `json:"conversation_message_id"`
	Payload               json.RawMessage `json:"payload"`
}

// HandleEvent processes one callback API delivery. VK retries anything that
// is not answered with "ok", so handler failures are logged and still
// acknowledged; the bot has already told the user something went wrong.
func (h *EventsHandler) HandleEvent(c echo.Context) error {
	var ev vkEvent
	if err := json.NewDecoder(c.Request().Body).Decode(&ev); err != nil {
		return c.String(http.StatusBadRequest, "bad request")
	}

	if h.secret != "" && ev.Secret != h.secret {
		h.log.Warn("callback event with bad secret", "type", ev.Type, "group", ev.GroupID)
		return c.String(http.StatusForbidden, "forbidden")
	}

	ctx := c.Request().Context()

	switch ev.Type {
	case "confirmation":
		return c.String(http.StatusOK, h.confirmation)

	case "message_new":
		var obj vkMessageNew
		if err := json.Unmarshal(ev.Object, &obj); err != nil {
			h.log.Error("malformed message_new object", "error", err)
			break
		}
		if err := h.bot.HandleMessage(ctx, bot.Message{
			UserID: obj.Message.FromID,
			PeerID: obj.Message.PeerID,
			Text:   obj.Message.Text,
		}); err != nil {
			h.log.Error("message handling failed", "user", obj.Message.FromID, "error", err)
		}

	case "message_event":
		var obj vkMessageEvent
		if err := json.Unmarshal(ev.Object, &obj); err != nil {
			h.log.Error("malformed message_event object", "error", err)
			break
		}
		if err := h.bot.HandleCallback(ctx, bot.Callback{
			EventID:   obj.EventID,
			UserID:    obj.UserID,
			PeerID:    obj.PeerID,
			MessageID: obj.ConversationMessageID,
			Payload:   obj.Payload,
		}); err != nil {
			h.log.Error("callback handling failed", "user", obj.UserID, "error", err)
		}

	default:
		h.log.Debug("ignoring callback event", "type", ev.Type)
	}

	return c.String(http.StatusOK, "ok")
}
