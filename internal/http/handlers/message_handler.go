// Free-text message HTTP handler.
//
// This file exposes the gateway seam for plain channel messages:
//   - POST /messages
//
// A message can trigger three behaviors, checked in order:
//  1. A `!command` flavor action (e.g. "!hydrate @bob") → rendered reply.
//  2. A mention of the bot, or a reply to one of its messages → persona reply
//     generated by the LLM backend. Generation failures degrade to the fixed
//     fallback line; the event is never failed back to the gateway.
//  3. Anything else → 204, the bot stays silent.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tatowo/dishweek-backend/internal/http/middleware"
	"github.com/tatowo/dishweek-backend/internal/persona"
	"github.com/tatowo/dishweek-backend/internal/services"
)

//
// DTOs
//

// MessageUser identifies the author of a free-text message.
type MessageUser struct {
	ID          string `json:"id" binding:"required" example:"217705"`
	DisplayName string `json:"display_name" example:"Bob"`
}

// MessageRequest is the JSON payload for one channel message event.
type MessageRequest struct {
	// MessageID is the platform id of the message.
	MessageID string `json:"message_id" binding:"required" example:"1132437"`
	// User is the author.
	User MessageUser `json:"user" binding:"required"`
	// Content is the raw message text, possibly containing mention tokens.
	Content string `json:"content" example:"<@99> what should I cook?"`
	// RepliedToID is the id of the message this one replies to, if any.
	RepliedToID string `json:"replied_to_id,omitempty"`
	// MentionsBot is true when the message mentions the bot directly.
	MentionsBot bool `json:"mentions_bot"`
}

// MessageResponse carries the bot's reply to a message event.
type MessageResponse struct {
	// MessageID is the id the gateway should send the reply under; empty for
	// flavor-action replies, which are not threaded.
	MessageID string `json:"message_id,omitempty"`
	// Content is the reply text.
	Content string `json:"content"`
}

// HandleMessage godoc
// @ID          handleMessage
// @Summary     Process a channel message
// @Description Answers flavor actions and persona mentions; returns 204 when the bot stays silent.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.MessageRequest  true  "Message event"
//
// @Success     200  {object}  handlers.MessageResponse
// @Success     204  {string}  string  "No reply"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /messages [post]
func (h *Handlers) HandleMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	ctx := c.Request.Context()

	// 1) Flavor actions: "!hydrate @bob" and friends. Unknown "!" commands
	// fall through and are treated as ordinary text.
	if inv, matched := persona.Parse(req.Content); matched {
		out := persona.Render(inv, req.User.DisplayName, inv.Target)
		ok(c, http.StatusOK, MessageResponse{Content: out})
		return
	}

	// 2) Persona replies: direct mention, or a reply to a remembered bot
	// message.
	addressed := req.MentionsBot ||
		(req.RepliedToID != "" && h.persona.Remembers(ctx, req.RepliedToID))
	if !addressed {
		noContent(c)
		return
	}

	start := time.Now()
	reply, err := h.persona.Reply(ctx, services.IncomingMessage{
		MessageID:   req.MessageID,
		UserID:      req.User.ID,
		DisplayName: req.User.DisplayName,
		Content:     req.Content,
		RepliedToID: req.RepliedToID,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			// Mention with no actual text; nothing to answer.
			noContent(c)
			return
		}
		middleware.ObserveLLM("error", time.Since(start))
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Str("message_id", req.MessageID).Msg("persona reply failed")
		ok(c, http.StatusOK, MessageResponse{Content: services.FallbackReply})
		return
	}

	middleware.ObserveLLM("ok", time.Since(start))
	ok(c, http.StatusOK, MessageResponse{MessageID: reply.MessageID, Content: reply.Content})
}
