// Package services – PersonaService
//
// This file implements the PersonaService, which produces in-character
// replies when the bot is mentioned or replied to. It strips platform
// mention syntax from the incoming text, optionally prepends the previous
// bot turn fetched from chat memory, forwards the prompt to the configured
// text-generation backend, and records the new reply in memory so the next
// turn can thread onto it.
//
// Any generation failure is surfaced to the caller, who is expected to send
// the fixed fallback line instead; no memory row is written in that case.
package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// FallbackReply is sent verbatim whenever reply generation fails. It is the
// one message that must never itself depend on the generation backend.
const FallbackReply = "I ran into an issue, please try again later."

// personaInstruction is the fixed system prompt that keeps the bot in
// character. The speaker's display name is appended per request.
const personaInstruction = "You are a funny cute and a bit depressed hamster named tatowo " +
	"that talks with uwu owo and uses cooking emojis, you will be helpful but funny too " +
	"and a bit dumb, but you are very good at cooking, and keep your answers short, " +
	"avoid more than 2 paragraphs. The person talking to you is "

// mentionRE matches platform mention tokens like <@123> and <@!123>.
var mentionRE = regexp.MustCompile(`<@!?\d+>`)

// Completer is the text-generation contract consumed by PersonaService.
// Implementations must honor the context for cancellation and timeouts.
type Completer interface {
	// Complete returns generated text for the system instruction and user
	// turn, bounded by maxTokens.
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// MemoryRepo defines the chat-memory persistence contract required by
// PersonaService.
type MemoryRepo interface {
	// CreateChatMemory records a sent reply under its message id.
	CreateChatMemory(ctx context.Context, db *gorm.DB, messageID, userID, botResponse string, createdAt time.Time) error

	// GetChatMemory fetches the stored reply text for a message id.
	GetChatMemory(ctx context.Context, db *gorm.DB, messageID string) (*domain.ChatMemory, error)

	// PruneChatMemory evicts the oldest rows beyond keep.
	PruneChatMemory(ctx context.Context, db *gorm.DB, keep int) (int64, error)
}

// IncomingMessage is one mention/reply event as decoded by the gateway.
type IncomingMessage struct {
	// MessageID is the platform id of the user's message.
	MessageID string
	// UserID identifies the author.
	UserID string
	// DisplayName is the author's display name, woven into the persona
	// instruction.
	DisplayName string
	// Content is the raw message text, possibly containing mention tokens.
	Content string
	// RepliedToID is the id of the bot message this message replies to,
	// empty for direct mentions.
	RepliedToID string
}

// PersonaReply is a generated reply ready to be sent by the gateway.
type PersonaReply struct {
	// MessageID is the fresh id under which the reply was cached; the
	// gateway should send the reply with this id so threading works.
	MessageID string `json:"message_id"`
	// Content is the generated text.
	Content string `json:"content"`
}

// PersonaService coordinates prompt assembly, generation, and reply memory.
type PersonaService struct {
	// DB is the GORM handle used for memory persistence.
	DB *gorm.DB
	// Repo is the chat-memory repository.
	Repo MemoryRepo
	// LLM generates the reply text.
	LLM Completer

	// MaxReplyTokens bounds the generation budget. Zero means 500.
	MaxReplyTokens int
	// MemoryKeep caps the chatbot_memory table; oldest rows are evicted
	// past it. Zero disables eviction.
	MemoryKeep int
	// Now returns the current time; overridable in tests.
	Now func() time.Time
}

// NewPersonaService constructs a PersonaService with the default token
// budget and retention cap.
func NewPersonaService(db *gorm.DB, r MemoryRepo, llm Completer) *PersonaService {
	return &PersonaService{
		DB:             db,
		Repo:           r,
		LLM:            llm,
		MaxReplyTokens: 500,
		MemoryKeep:     512,
		Now:            time.Now,
	}
}

func (s *PersonaService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Remembers reports whether messageID names a cached bot reply. The gateway
// uses it to decide if a reply-to event is addressed at the bot at all.
func (s *PersonaService) Remembers(ctx context.Context, messageID string) bool {
	if messageID == "" {
		return false
	}
	_, err := s.Repo.GetChatMemory(ctx, s.DB, messageID)
	return err == nil
}

// Reply generates an in-character reply for msg.
//
// Semantics:
//   - Mention tokens are stripped; an empty remainder yields ErrEmptyMessage.
//   - When msg.RepliedToID names a cached bot reply, its text is prepended
//     as "Previous context:" so the model sees the prior turn. A missing
//     memory row is not an error; the turn simply starts fresh.
//   - On success the reply is cached under a fresh message id and the
//     retention cap is enforced. A failed cache write is logged, not
//     surfaced: the reply was generated and should still be sent.
//   - On generation failure the error is returned and nothing is written;
//     the caller sends FallbackReply.
func (s *PersonaService) Reply(ctx context.Context, msg IncomingMessage) (*PersonaReply, error) {
	tr := otel.Tracer("services/PersonaService")
	ctx, span := tr.Start(ctx, "Reply",
		trace.WithAttributes(
			attribute.String("message.id", msg.MessageID),
			attribute.String("user.id", msg.UserID),
		),
	)
	defer span.End()

	userInput := strings.TrimSpace(mentionRE.ReplaceAllString(msg.Content, ""))
	if userInput == "" {
		return nil, ErrEmptyMessage
	}

	prompt := userInput
	if msg.RepliedToID != "" {
		if prev, err := s.Repo.GetChatMemory(ctx, s.DB, msg.RepliedToID); err == nil {
			prompt = "Previous context: " + prev.BotResponse + "\nUser: " + userInput
		}
	}

	maxTokens := s.MaxReplyTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	text, err := s.LLM.Complete(ctx, personaInstruction+msg.DisplayName+" : ", prompt, maxTokens)
	if err != nil {
		return nil, err
	}

	reply := &PersonaReply{
		MessageID: uuid.NewString(),
		Content:   text,
	}

	if err := s.Repo.CreateChatMemory(ctx, s.DB, reply.MessageID, msg.UserID, text, s.now()); err != nil {
		log.Warn().Err(err).Str("message_id", reply.MessageID).Msg("could not cache bot reply")
		return reply, nil
	}
	if _, err := s.Repo.PruneChatMemory(ctx, s.DB, s.MemoryKeep); err != nil {
		log.Warn().Err(err).Msg("could not prune chat memory")
	}
	return reply, nil
}
