package command

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tatowo/dishweek-backend/internal/domain"
	"github.com/tatowo/dishweek-backend/internal/services"
)

// ----- Fake service -----

type fakeChallengeService struct {
	setDishCalls int
	setDishName  string
	setDishErr   error
	setDishOut   *domain.Dish

	currentOut *services.CurrentDish
	currentErr error

	participateCalls int
	participateImage string
	participateErr   error
	participateOut   *domain.Participation

	deleteCalls int
	deleteName  string
	deleteDish  string
	deleteN     int64
	deleteErr   error

	leaderboardOut []services.LeaderboardEntry
	leaderboardErr error
}

func (f *fakeChallengeService) SetDish(ctx context.Context, actor services.Actor, name, recipeIdea string, imageURL *string) (*domain.Dish, error) {
	f.setDishCalls++
	f.setDishName = name
	if f.setDishErr != nil {
		return nil, f.setDishErr
	}
	if f.setDishOut != nil {
		return f.setDishOut, nil
	}
	return &domain.Dish{Name: name, RecipeIdea: recipeIdea, ImageURL: imageURL}, nil
}

func (f *fakeChallengeService) GetCurrentDish(ctx context.Context) (*services.CurrentDish, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.currentOut, nil
}

func (f *fakeChallengeService) Participate(ctx context.Context, actor services.Actor, imageURL string) (*domain.Participation, error) {
	f.participateCalls++
	f.participateImage = imageURL
	if f.participateErr != nil {
		return nil, f.participateErr
	}
	if f.participateOut != nil {
		return f.participateOut, nil
	}
	return &domain.Participation{UserID: actor.ID, UserName: actor.DisplayName, DishName: "Tacos", ImageURL: imageURL}, nil
}

func (f *fakeChallengeService) DeleteParticipation(ctx context.Context, actor services.Actor, displayName, dishName string) (int64, error) {
	f.deleteCalls++
	f.deleteName, f.deleteDish = displayName, dishName
	return f.deleteN, f.deleteErr
}

func (f *fakeChallengeService) Leaderboard(ctx context.Context, limit int) ([]services.LeaderboardEntry, error) {
	if f.leaderboardErr != nil {
		return nil, f.leaderboardErr
	}
	return f.leaderboardOut, nil
}

func dispatch(t *testing.T, svc ChallengeService, in Interaction) (Reply, error) {
	t.Helper()
	return NewChallengeRouter(svc).Dispatch(context.Background(), in)
}

var (
	adminUser  = User{ID: "1", DisplayName: "Admin", Admin: true}
	normalUser = User{ID: "42", DisplayName: "Bob"}
)

// ----- Router -----

func TestDispatch_UnknownCommand(t *testing.T) {
	_, err := dispatch(t, &fakeChallengeService{}, Interaction{Command: "nope", User: normalUser})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestDispatch_AdminGateRunsBeforeHandler(t *testing.T) {
	for _, name := range []string{"setdish", "deleteparticipation"} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeChallengeService{}
			_, err := dispatch(t, svc, Interaction{Command: name, User: normalUser})
			if !errors.Is(err, services.ErrPermissionDenied) {
				t.Fatalf("expected ErrPermissionDenied, got %v", err)
			}
			if svc.setDishCalls != 0 || svc.deleteCalls != 0 {
				t.Fatal("handler must not run for non-admin caller")
			}
		})
	}
}

func TestCommands_ListsInRegistrationOrder(t *testing.T) {
	r := NewChallengeRouter(&fakeChallengeService{})
	got := r.Commands()
	want := []string{"help", "setdish", "currentdish", "participate", "deleteparticipation", "leaderboard"}
	if len(got) != len(want) {
		t.Fatalf("expected %d commands, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("command %d = %q, want %q", i, got[i].Name, name)
		}
	}
}

// ----- help -----

func TestHelp(t *testing.T) {
	reply, err := dispatch(t, &fakeChallengeService{}, Interaction{Command: "help", User: normalUser})
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if !reply.Ephemeral {
		t.Fatal("help should be ephemeral")
	}
	if !strings.Contains(reply.Body, "/participate") || !strings.Contains(reply.Body, "/leaderboard") {
		t.Fatalf("help body missing commands: %q", reply.Body)
	}
}

// ----- setdish -----

func TestSetDish_MissingOptions(t *testing.T) {
	svc := &fakeChallengeService{}
	_, err := dispatch(t, svc, Interaction{
		Command: "setdish",
		User:    adminUser,
		Options: Options{"name": "Tacos"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "recipe" {
		t.Fatalf("expected validation error on recipe, got %v", err)
	}
	if svc.setDishCalls != 0 {
		t.Fatal("service must not be called with missing options")
	}
}

func TestSetDish_Success(t *testing.T) {
	svc := &fakeChallengeService{}
	reply, err := dispatch(t, svc, Interaction{
		Command: "setdish",
		User:    adminUser,
		Options: Options{"name": "Tacos", "recipe": "Use soft shells", "image": "http://cdn/t.png"},
	})
	if err != nil {
		t.Fatalf("setdish: %v", err)
	}
	if reply.Title != "🍽️ Dish of the Week!" {
		t.Fatalf("unexpected title %q", reply.Title)
	}
	if !strings.Contains(reply.Body, "**Tacos**") || !strings.Contains(reply.Body, "Use soft shells") {
		t.Fatalf("unexpected body %q", reply.Body)
	}
	if reply.ImageURL != "http://cdn/t.png" {
		t.Fatalf("unexpected image %q", reply.ImageURL)
	}
}

// ----- currentdish -----

func TestCurrentDish_NoneSet(t *testing.T) {
	svc := &fakeChallengeService{currentErr: services.ErrNoDishSet}
	reply, err := dispatch(t, svc, Interaction{Command: "currentdish", User: normalUser})
	if err != nil {
		t.Fatalf("currentdish: %v", err)
	}
	if reply.Body != "❌ No dish of the week has been set yet." {
		t.Fatalf("unexpected body %q", reply.Body)
	}
}

func TestCurrentDish_FormatsTitleAndDays(t *testing.T) {
	svc := &fakeChallengeService{
		currentOut: &services.CurrentDish{
			Dish:     &domain.Dish{Name: "spicy tacos", RecipeIdea: "Use soft shells"},
			DaysLeft: 5,
		},
	}
	reply, err := dispatch(t, svc, Interaction{Command: "currentdish", User: normalUser})
	if err != nil {
		t.Fatalf("currentdish: %v", err)
	}
	if reply.Title != "🍽️ Dish of the Week: Spicy Tacos" {
		t.Fatalf("unexpected title %q", reply.Title)
	}
	if !strings.Contains(reply.Body, "Time Remaining: 5 days") {
		t.Fatalf("unexpected body %q", reply.Body)
	}
}

// ----- participate -----

func TestParticipate_MissingAttachmentMessage(t *testing.T) {
	svc := &fakeChallengeService{participateErr: services.ErrMissingAttachment}
	reply, err := dispatch(t, svc, Interaction{Command: "participate", User: normalUser})
	if err != nil {
		t.Fatalf("participate: %v", err)
	}
	if reply.Body != "❌ You must provide an image attachment to participate." {
		t.Fatalf("unexpected body %q", reply.Body)
	}
}

func TestParticipate_DuplicateDrawsFromPool(t *testing.T) {
	svc := &fakeChallengeService{participateErr: services.ErrDuplicateParticipation}
	reply, err := dispatch(t, svc, Interaction{
		Command: "participate",
		User:    normalUser,
		Options: Options{"image": "http://x/2.png"},
	})
	if err != nil {
		t.Fatalf("participate: %v", err)
	}
	found := false
	for _, line := range duplicateResponses {
		if reply.Body == line {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("duplicate reply %q not from the flavor pool", reply.Body)
	}
}

func TestParticipate_Success(t *testing.T) {
	svc := &fakeChallengeService{}
	reply, err := dispatch(t, svc, Interaction{
		Command: "participate",
		User:    normalUser,
		Options: Options{"image": "http://x/1.png"},
	})
	if err != nil {
		t.Fatalf("participate: %v", err)
	}
	if !strings.Contains(reply.Title, "Bob has participated in **Tacos**!") {
		t.Fatalf("unexpected title %q", reply.Title)
	}
	if reply.ImageURL != "http://x/1.png" {
		t.Fatalf("unexpected image %q", reply.ImageURL)
	}
	if svc.participateImage != "http://x/1.png" {
		t.Fatalf("image option not forwarded, got %q", svc.participateImage)
	}
}

// ----- deleteparticipation -----

func TestDeleteParticipation_RequiresOptions(t *testing.T) {
	_, err := dispatch(t, &fakeChallengeService{}, Interaction{
		Command: "deleteparticipation",
		User:    adminUser,
		Options: Options{"username": "bob"},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "dish" {
		t.Fatalf("expected validation error on dish, got %v", err)
	}
}

func TestDeleteParticipation_ReportsCount(t *testing.T) {
	svc := &fakeChallengeService{deleteN: 2}
	reply, err := dispatch(t, svc, Interaction{
		Command: "deleteparticipation",
		User:    adminUser,
		Options: Options{"username": "bob", "dish": "Tacos"},
	})
	if err != nil {
		t.Fatalf("deleteparticipation: %v", err)
	}
	if !strings.Contains(reply.Body, "**bob**") || !strings.Contains(reply.Body, "**Tacos**") {
		t.Fatalf("unexpected body %q", reply.Body)
	}
	if !strings.Contains(reply.Body, "(2 removed)") {
		t.Fatalf("expected removal count, got %q", reply.Body)
	}
	if svc.deleteName != "bob" || svc.deleteDish != "Tacos" {
		t.Fatalf("options not forwarded: %q %q", svc.deleteName, svc.deleteDish)
	}
}

// ----- leaderboard -----

func TestLeaderboard_Empty(t *testing.T) {
	svc := &fakeChallengeService{leaderboardErr: services.ErrNoParticipations}
	reply, err := dispatch(t, svc, Interaction{Command: "leaderboard", User: normalUser})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if reply.Body != "❌ No participations found." {
		t.Fatalf("unexpected body %q", reply.Body)
	}
}

func TestLeaderboard_FormatsEntries(t *testing.T) {
	svc := &fakeChallengeService{
		leaderboardOut: []services.LeaderboardEntry{
			{Rank: 1, DisplayName: "Alice", Count: 3},
			{Rank: 2, DisplayName: "Bob", Count: 1},
		},
	}
	reply, err := dispatch(t, svc, Interaction{Command: "leaderboard", User: normalUser})
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if reply.Title != "🏆 Leaderboard" {
		t.Fatalf("unexpected title %q", reply.Title)
	}
	want := "1. **Alice** - 3 nom\n2. **Bob** - 1 nom"
	if reply.Body != want {
		t.Fatalf("body = %q, want %q", reply.Body, want)
	}
}
