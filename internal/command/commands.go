// Package command – challenge command handlers.
//
// This file registers the six challenge commands (help, setdish,
// currentdish, participate, deleteparticipation, leaderboard) against a
// ChallengeService and formats their results as user-facing replies,
// keeping the bot's original chat wording.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tatowo/dishweek-backend/internal/domain"
	"github.com/tatowo/dishweek-backend/internal/services"
)

// participateHint is appended wherever the original bot advertised the
// participate command.
const participateHint = "`/participate` : Use this command to participate in the current challenge, requires an image to participate"

// ChallengeService defines the challenge operations consumed by the command
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChallengeService interface {
	// SetDish appends a new dish of the week (admin only).
	SetDish(ctx context.Context, actor services.Actor, name, recipeIdea string, imageURL *string) (*domain.Dish, error)
	// GetCurrentDish returns the latest dish and its remaining days.
	GetCurrentDish(ctx context.Context) (*services.CurrentDish, error)
	// Participate records a submission against the current dish.
	Participate(ctx context.Context, actor services.Actor, imageURL string) (*domain.Participation, error)
	// DeleteParticipation removes submissions by display name and dish (admin only).
	DeleteParticipation(ctx context.Context, actor services.Actor, displayName, dishName string) (int64, error)
	// Leaderboard returns the top submitters.
	Leaderboard(ctx context.Context, limit int) ([]services.LeaderboardEntry, error)
}

// titleCaser renders dish names in the current-dish headline.
var titleCaser = cases.Title(language.English)

// NewChallengeRouter builds a Router with all challenge commands registered.
func NewChallengeRouter(svc ChallengeService) *Router {
	r := NewRouter()
	r.Register(Command{
		Name:        "help",
		Description: "Shows the available commands",
		Run:         helpHandler,
	})
	r.Register(Command{
		Name:        "setdish",
		Description: "Set the dish of the week (Admin only)",
		AdminOnly:   true,
		Run:         setDishHandler(svc),
	})
	r.Register(Command{
		Name:        "currentdish",
		Description: "View the current dish of the week",
		Run:         currentDishHandler(svc),
	})
	r.Register(Command{
		Name:        "participate",
		Description: "Participate in the current Dish of the Week",
		Run:         participateHandler(svc),
	})
	r.Register(Command{
		Name:        "deleteparticipation",
		Description: "Delete a user's participation (Admin only)",
		AdminOnly:   true,
		Run:         deleteParticipationHandler(svc),
	})
	r.Register(Command{
		Name:        "leaderboard",
		Description: "View the top participants",
		Run:         leaderboardHandler(svc),
	})
	return r
}

func actorOf(in Interaction) services.Actor {
	return services.Actor{
		ID:          in.User.ID,
		DisplayName: in.User.DisplayName,
		Admin:       in.User.Admin,
	}
}

// helpHandler answers with the static command overview, visible only to the
// caller.
func helpHandler(ctx context.Context, in Interaction) (Reply, error) {
	body := strings.Join([]string{
		"Each week, a new dish is chosen for the Dish of the Week challenge. " +
			"You have one week to cook it and share a photo to participate. " +
			"Each valid submission earns you points!",
		"",
		"🍽️ `/currentdish` - View the current dish and time remaining.",
		"👨‍🍳 `/participate` - Upload an image in the current challenge.",
		"🏆 `/leaderboard` - View the top participants.",
		"🤖 Mention the bot to get a sad hamster chef's opinion.",
	}, "\n")
	return Reply{
		Title:     "📜 Help - Dish of the Week Bot",
		Body:      body,
		Ephemeral: true,
	}, nil
}

func setDishHandler(svc ChallengeService) HandlerFunc {
	return func(ctx context.Context, in Interaction) (Reply, error) {
		name, err := requireString(in.Options, "name")
		if err != nil {
			return Reply{}, err
		}
		recipe, err := requireString(in.Options, "recipe")
		if err != nil {
			return Reply{}, err
		}
		var imageURL *string
		if v, ok := in.Options.String("image"); ok && v != "" {
			imageURL = &v
		}

		d, err := svc.SetDish(ctx, actorOf(in), name, recipe, imageURL)
		if err != nil {
			return Reply{}, err
		}

		reply := Reply{
			Title: "🍽️ Dish of the Week!",
			Body:  fmt.Sprintf("**%s**\n📝 Recipe Idea: %s\n\n%s", d.Name, d.RecipeIdea, participateHint),
		}
		if d.ImageURL != nil {
			reply.ImageURL = *d.ImageURL
		}
		return reply, nil
	}
}

func currentDishHandler(svc ChallengeService) HandlerFunc {
	return func(ctx context.Context, in Interaction) (Reply, error) {
		cur, err := svc.GetCurrentDish(ctx)
		if err != nil {
			if errors.Is(err, services.ErrNoDishSet) {
				return Reply{Body: "❌ No dish of the week has been set yet."}, nil
			}
			return Reply{}, err
		}

		reply := Reply{
			Title: "🍽️ Dish of the Week: " + titleCaser.String(cur.Dish.Name),
			Body: fmt.Sprintf("📝 Recipe Idea: %s\n⏳ Time Remaining: %d days\n\n%s",
				cur.Dish.RecipeIdea, cur.DaysLeft, participateHint),
		}
		if cur.Dish.ImageURL != nil {
			reply.ImageURL = *cur.Dish.ImageURL
		}
		return reply, nil
	}
}

func participateHandler(svc ChallengeService) HandlerFunc {
	return func(ctx context.Context, in Interaction) (Reply, error) {
		imageURL, _ := in.Options.String("image")

		p, err := svc.Participate(ctx, actorOf(in), imageURL)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoActiveDish):
				return Reply{Body: "❌ No dish of the week has been set yet."}, nil
			case errors.Is(err, services.ErrMissingAttachment):
				return Reply{Body: "❌ You must provide an image attachment to participate."}, nil
			case errors.Is(err, services.ErrDuplicateParticipation):
				return Reply{Body: duplicateResponse()}, nil
			}
			return Reply{}, err
		}

		return Reply{
			Title:    fmt.Sprintf("✅ %s has participated in **%s**!", p.UserName, p.DishName),
			Body:     "Check out the dish! 🍳",
			ImageURL: p.ImageURL,
		}, nil
	}
}

func deleteParticipationHandler(svc ChallengeService) HandlerFunc {
	return func(ctx context.Context, in Interaction) (Reply, error) {
		username, err := requireString(in.Options, "username")
		if err != nil {
			return Reply{}, err
		}
		dish, err := requireString(in.Options, "dish")
		if err != nil {
			return Reply{}, err
		}

		n, err := svc.DeleteParticipation(ctx, actorOf(in), username, dish)
		if err != nil {
			return Reply{}, err
		}

		return Reply{
			Body: fmt.Sprintf("🗑️ Participation of **%s** in **%s** has been yeeted. (%d removed)", username, dish, n),
		}, nil
	}
}

func leaderboardHandler(svc ChallengeService) HandlerFunc {
	return func(ctx context.Context, in Interaction) (Reply, error) {
		entries, err := svc.Leaderboard(ctx, 0)
		if err != nil {
			if errors.Is(err, services.ErrNoParticipations) {
				return Reply{Body: "❌ No participations found."}, nil
			}
			return Reply{}, err
		}

		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, fmt.Sprintf("%d. **%s** - %d nom", e.Rank, e.DisplayName, e.Count))
		}
		return Reply{
			Title: "🏆 Leaderboard",
			Body:  strings.Join(lines, "\n"),
		}, nil
	}
}
