// Slash-command HTTP handler.
//
// This file exposes the gateway seam for decoded slash-command invocations:
//   - POST /interactions
//
// Handlers are transport-thin: they validate input, call the command router,
// and translate results into HTTP responses. Expected challenge outcomes (no
// dish set, duplicate submission, …) never surface here as errors; the router
// renders them as in-character replies. Errors reaching this layer are
// authorization, validation, and store failures.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatowo/dishweek-backend/internal/command"
	"github.com/tatowo/dishweek-backend/internal/http/middleware"
	"github.com/tatowo/dishweek-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CommandDispatcher routes one decoded slash-command invocation to its
// handler. Implementations should be safe for concurrent use and must honor
// the provided context for cancellation and timeouts.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, in command.Interaction) (command.Reply, error)
}

// PersonaService produces in-character replies for mention/reply events.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PersonaService interface {
	// Reply generates a reply for one mention/reply event.
	Reply(ctx context.Context, msg services.IncomingMessage) (*services.PersonaReply, error)
	// Remembers reports whether messageID names a previously sent bot reply.
	Remembers(ctx context.Context, messageID string) bool
}

// ChallengeReader defines the read-only challenge operations behind the REST
// endpoints.
type ChallengeReader interface {
	// GetCurrentDish returns the latest dish and its remaining days.
	GetCurrentDish(ctx context.Context) (*services.CurrentDish, error)
	// Leaderboard returns the top submitters, bounded by limit.
	Leaderboard(ctx context.Context, limit int) ([]services.LeaderboardEntry, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for interactions, messages, and challenge
// reads. It depends on abstract contracts to keep transport concerns separate
// from business logic.
type Handlers struct {
	router    CommandDispatcher
	persona   PersonaService
	challenge ChallengeReader
}

// New constructs and returns a Handlers instance bound to the given
// collaborators.
func New(router CommandDispatcher, persona PersonaService, challenge ChallengeReader) *Handlers {
	return &Handlers{router: router, persona: persona, challenge: challenge}
}

// Interact godoc
// @ID          interact
// @Summary     Dispatch a slash command
// @Description Routes a decoded slash-command invocation and returns the bot's reply. Exactly one response is produced per interaction.
// @Tags        Interactions
// @Accept      json
// @Produce     json
//
// @Param       body  body  command.Interaction  true  "Decoded invocation"
//
// @Success     200  {object}  command.Reply
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request / missing option"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin-only command"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown command"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /interactions [post]
func (h *Handlers) Interact(c *gin.Context) {
	var in command.Interaction
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if in.Command == "" || in.User.ID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "command and user.id are required")
		return
	}

	reply, err := h.router.Dispatch(c.Request.Context(), in)
	if err != nil {
		var verr *command.ValidationError
		switch {
		case errors.Is(err, command.ErrUnknownCommand):
			middleware.ObserveCommand(in.Command, "invalid")
			fail(c, http.StatusNotFound, ErrCodeUnknownCommand, err.Error())
		case errors.Is(err, services.ErrPermissionDenied):
			middleware.ObserveCommand(in.Command, "denied")
			fail(c, http.StatusForbidden, ErrCodeForbidden, "you do not have permission to use this command")
		case errors.As(err, &verr):
			middleware.ObserveCommand(in.Command, "invalid")
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, verr.Error())
		default:
			middleware.ObserveCommand(in.Command, "error")
			fail(c, http.StatusInternalServerError, ErrCodeDispatchFailed, err.Error())
		}
		return
	}

	middleware.ObserveCommand(in.Command, "ok")
	ok(c, http.StatusOK, reply)
}
