package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tatowo/dishweek-backend/internal/services"
)

func TestHandleMessage_FlavorAction(t *testing.T) {
	p := &fakePersona{}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID: "m1",
		User:      MessageUser{ID: "42", DisplayName: "Alice"},
		Content:   "!hydrate @bob",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200; body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "**Alice** redeemed **hydrate** for **@bob**!") {
		t.Fatalf("unexpected flavor body %s", w.Body.String())
	}
	if p.calls != 0 {
		t.Fatal("flavor actions must not hit the persona service")
	}
}

func TestHandleMessage_MentionGeneratesReply(t *testing.T) {
	p := &fakePersona{reply: &services.PersonaReply{MessageID: "r1", Content: "uwu hello 🍳"}}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID:   "m1",
		User:        MessageUser{ID: "42", DisplayName: "Bob"},
		Content:     "<@99> what should I cook?",
		MentionsBot: true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "uwu hello 🍳") || !strings.Contains(w.Body.String(), `"message_id":"r1"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if p.gotMsg.DisplayName != "Bob" || p.gotMsg.Content != "<@99> what should I cook?" {
		t.Fatalf("event not forwarded: %+v", p.gotMsg)
	}
}

func TestHandleMessage_ReplyToRememberedBotMessage(t *testing.T) {
	p := &fakePersona{
		reply:     &services.PersonaReply{MessageID: "r2", Content: "use soft shells uwu"},
		remembers: map[string]bool{"bot-1": true},
	}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID:   "m2",
		User:        MessageUser{ID: "42", DisplayName: "Bob"},
		Content:     "which shells?",
		RepliedToID: "bot-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if p.gotMsg.RepliedToID != "bot-1" {
		t.Fatalf("replied-to id not forwarded: %+v", p.gotMsg)
	}
}

func TestHandleMessage_SilentWhenNotAddressed(t *testing.T) {
	p := &fakePersona{remembers: map[string]bool{}}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	// Plain chatter: no mention, no reply target.
	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID: "m3",
		User:      MessageUser{ID: "42"},
		Content:   "anyone up for tacos?",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}

	// Reply to a message the bot never sent.
	w = postJSON(t, r, "/messages", MessageRequest{
		MessageID:   "m4",
		User:        MessageUser{ID: "42"},
		Content:     "agreed",
		RepliedToID: "human-1",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
	if p.calls != 0 {
		t.Fatal("persona service must not run for unaddressed messages")
	}
}

func TestHandleMessage_LLMFailureFallsBack(t *testing.T) {
	p := &fakePersona{err: errors.New("upstream 500")}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID:   "m5",
		User:        MessageUser{ID: "42", DisplayName: "Bob"},
		Content:     "<@99> hello",
		MentionsBot: true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 with fallback", w.Code)
	}
	if !strings.Contains(w.Body.String(), services.FallbackReply) {
		t.Fatalf("expected fallback content, got %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), `"message_id"`) {
		t.Fatalf("fallback must not carry a reply id: %s", w.Body.String())
	}
}

func TestHandleMessage_EmptyAfterStripIsSilent(t *testing.T) {
	p := &fakePersona{err: services.ErrEmptyMessage}
	r := testRouter(New(&fakeDispatcher{}, p, &fakeChallenge{}))

	w := postJSON(t, r, "/messages", MessageRequest{
		MessageID:   "m6",
		User:        MessageUser{ID: "42"},
		Content:     "<@99>",
		MentionsBot: true,
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d; want 204", w.Code)
	}
}

func TestHandleMessage_InvalidBody(t *testing.T) {
	r := testRouter(New(&fakeDispatcher{}, &fakePersona{}, &fakeChallenge{}))

	// user.id is required by binding.
	w := postJSON(t, r, "/messages", map[string]any{"content": "hi"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}
