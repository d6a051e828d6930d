// Package command implements the slash-command surface of the bot: a
// registry mapping command names to handlers with a uniform
// (context, interaction) → reply contract. The registry replaces
// string-ladder dispatch; adding a command is one Register call.
//
// Authorization is enforced here, before the handler runs (and therefore
// before any deferral a transport might perform): commands marked AdminOnly
// reject non-admin callers with services.ErrPermissionDenied.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatowo/dishweek-backend/internal/services"
)

// ErrUnknownCommand is returned by Dispatch for unregistered command names.
var ErrUnknownCommand = errors.New("unknown command")

// ValidationError reports a missing or malformed required option. It maps to
// a caller-visible validation reply, never a crash.
type ValidationError struct {
	Field string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("option %q is required", e.Field)
}

// User identifies the caller of a command as decoded from the platform
// event.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Admin       bool   `json:"admin"`
}

// Options carries the typed command options by name. Attachments arrive as
// their URL.
type Options map[string]string

// String returns the named option, trimmed of nothing: options are passed
// through as the platform delivered them. ok is false when absent.
func (o Options) String(name string) (string, bool) {
	v, ok := o[name]
	return v, ok
}

// Interaction is one decoded slash-command invocation.
type Interaction struct {
	Command string  `json:"command"`
	User    User    `json:"user"`
	Options Options `json:"options,omitempty"`
}

// Reply is the bot's answer to one interaction, shaped so a gateway can
// render it as an embed or plain message.
type Reply struct {
	Title     string `json:"title,omitempty"`
	Body      string `json:"body"`
	ImageURL  string `json:"image_url,omitempty"`
	Ephemeral bool   `json:"ephemeral,omitempty"`
}

// HandlerFunc executes one command. Expected domain outcomes (no dish set,
// duplicate submission, ...) are rendered as a Reply; errors are reserved
// for authorization, validation, and store failures.
type HandlerFunc func(ctx context.Context, in Interaction) (Reply, error)

// Command couples a name with its handler and authorization requirement.
type Command struct {
	Name        string
	Description string
	AdminOnly   bool
	Run         HandlerFunc
}

// Router dispatches interactions to registered commands.
type Router struct {
	commands map[string]Command
	order    []string
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{commands: make(map[string]Command)}
}

// Register adds cmd to the registry, replacing any previous registration
// under the same name.
func (r *Router) Register(cmd Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Commands returns the registered commands in registration order; used for
// the help text and for gateway-side command registration.
func (r *Router) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Dispatch routes in to its command. The admin gate runs before the handler:
// a non-admin caller of an AdminOnly command gets services.ErrPermissionDenied
// and the handler never executes, so no store mutation can occur.
func (r *Router) Dispatch(ctx context.Context, in Interaction) (Reply, error) {
	cmd, ok := r.commands[in.Command]
	if !ok {
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownCommand, in.Command)
	}
	if cmd.AdminOnly && !in.User.Admin {
		return Reply{}, services.ErrPermissionDenied
	}
	return cmd.Run(ctx, in)
}

// requireString extracts a required option or fails with a ValidationError.
func requireString(opts Options, name string) (string, error) {
	v, ok := opts.String(name)
	if !ok || v == "" {
		return "", &ValidationError{Field: name}
	}
	return v, nil
}
