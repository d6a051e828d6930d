// Package services – ChallengeService
//
// This file implements the ChallengeService, the component that owns the
// rules of the weekly cooking challenge: one active dish, one submission per
// user per dish. The "current" dish is never stored as a flag; it is always
// derived as the most recently set row, so setting a new dish implicitly
// supersedes the previous one.
//
// Service-level errors (e.g., ErrNoActiveDish, ErrDuplicateParticipation)
// are returned for predictable cases so handlers can map them to replies
// consistently.
//
// Observability: all public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/domain"
	"github.com/tatowo/dishweek-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// challengeWindow is how long a dish stays open for submissions. Submissions
// after the window still count (the dish remains current until superseded);
// the window only drives the "time remaining" display.
const challengeWindow = 7 * 24 * time.Hour

// Actor identifies the caller of a challenge operation, as decoded from the
// platform event. Admin reflects the platform-granted administrative
// capability, not anything stored by this service.
type Actor struct {
	ID          string
	DisplayName string
	Admin       bool
}

// CurrentDish pairs a dish with the number of whole days left in its window.
type CurrentDish struct {
	Dish     *domain.Dish `json:"dish"`
	DaysLeft int          `json:"days_left"`
}

// LeaderboardEntry is one ranked row of the participation leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Count       int64  `json:"count"`
}

// ChallengeRepo defines the repository contract required by ChallengeService.
// Implementations are responsible for persistence of dishes and submissions.
type ChallengeRepo interface {
	// CreateDish appends a new dish row stamped with dateSet.
	CreateDish(ctx context.Context, db *gorm.DB, name, recipeIdea string, imageURL *string, dateSet time.Time) (*domain.Dish, error)

	// LatestDish returns the most recently set dish.
	LatestDish(ctx context.Context, db *gorm.DB) (*domain.Dish, error)

	// CreateParticipation inserts a submission, returning repo.ErrDuplicate
	// when the (user, dish) pair already exists.
	CreateParticipation(ctx context.Context, db *gorm.DB, userID, userName, dishName, imageURL string, createdAt time.Time) (*domain.Participation, error)

	// HasParticipation reports whether the user already submitted for the dish.
	HasParticipation(ctx context.Context, db *gorm.DB, userID, dishName string) (bool, error)

	// DeleteParticipations removes submissions by display name (case-insensitive)
	// and dish name (exact), returning the removed row count.
	DeleteParticipations(ctx context.Context, db *gorm.DB, userName, dishName string) (int64, error)

	// Leaderboard returns the top submitters grouped by display name.
	Leaderboard(ctx context.Context, db *gorm.DB, limit int) ([]repo.LeaderboardRow, error)
}

// ChallengeService enforces the weekly-challenge rules on top of the thin
// repository layer.
type ChallengeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the challenge repository used by this service.
	Repo ChallengeRepo

	// Now returns the current time; overridable in tests. Defaults to
	// time.Now (UTC is applied at call sites).
	Now func() time.Time

	// DefaultLeaderboardLimit bounds Leaderboard when the caller passes
	// limit <= 0. Zero means 10.
	DefaultLeaderboardLimit int
}

// NewChallengeService constructs a ChallengeService with sane defaults.
func NewChallengeService(db *gorm.DB, r ChallengeRepo) *ChallengeService {
	return &ChallengeService{
		DB:                      db,
		Repo:                    r,
		Now:                     time.Now,
		DefaultLeaderboardLimit: 10,
	}
}

func (s *ChallengeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// SetDish appends a new dish of the week on behalf of actor. The actor must
// hold the admin capability; content is deliberately not validated (empty
// name and recipe are accepted, as the announcement is the admin's call).
// The new dish becomes current purely by recency.
func (s *ChallengeService) SetDish(ctx context.Context, actor Actor, name, recipeIdea string, imageURL *string) (*domain.Dish, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "SetDish",
		trace.WithAttributes(
			attribute.String("actor.id", actor.ID),
			attribute.String("dish.name", name),
		),
	)
	defer span.End()

	if !actor.Admin {
		return nil, ErrPermissionDenied
	}
	return s.Repo.CreateDish(ctx, s.DB, name, recipeIdea, imageURL, s.now())
}

// GetCurrentDish returns the most recently set dish together with the whole
// days remaining in its window, floored and never negative. Returns
// ErrNoDishSet when no dish exists. No state is mutated.
func (s *ChallengeService) GetCurrentDish(ctx context.Context) (*CurrentDish, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "GetCurrentDish")
	defer span.End()

	d, err := s.Repo.LatestDish(ctx, s.DB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoDishSet
		}
		return nil, err
	}

	left := challengeWindow - s.now().Sub(d.DateSet)
	days := int(left / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return &CurrentDish{Dish: d, DaysLeft: days}, nil
}

// Participate records a submission by actor against the current dish.
//
// Semantics and validation:
//   - A current dish must exist; otherwise ErrNoActiveDish.
//   - imageURL must be non-empty; otherwise ErrMissingAttachment.
//   - One submission per (user, dish): a repeat attempt yields
//     ErrDuplicateParticipation.
//
// Concurrency & atomicity:
//   - The existence check and the insert run inside a transaction, and the
//     unique index over (user_id, dish_name) is the final arbiter, so two
//     concurrent submissions cannot both land.
func (s *ChallengeService) Participate(ctx context.Context, actor Actor, imageURL string) (*domain.Participation, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "Participate",
		trace.WithAttributes(attribute.String("actor.id", actor.ID)),
	)
	defer span.End()

	cur, err := s.Repo.LatestDish(ctx, s.DB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveDish
		}
		return nil, err
	}
	if imageURL == "" {
		return nil, ErrMissingAttachment
	}

	var out *domain.Participation
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.Repo.HasParticipation(ctx, tx, actor.ID, cur.Name)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateParticipation
		}
		p, err := s.Repo.CreateParticipation(ctx, tx, actor.ID, actor.DisplayName, cur.Name, imageURL, s.now())
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateParticipation
			}
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteParticipation removes all submissions matching displayName
// (case-insensitive) and dishName (exact) on behalf of an admin actor. The
// count of removed rows is returned; zero matches is a success, making the
// operation idempotent.
//
// The match key is the stored display-name snapshot, not the stable user id:
// admins know participants by name, not by platform id. Name collisions can
// therefore remove more rows than intended; see DESIGN.md.
func (s *ChallengeService) DeleteParticipation(ctx context.Context, actor Actor, displayName, dishName string) (int64, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "DeleteParticipation",
		trace.WithAttributes(
			attribute.String("actor.id", actor.ID),
			attribute.String("target.display_name", displayName),
			attribute.String("dish.name", dishName),
		),
	)
	defer span.End()

	if !actor.Admin {
		return 0, ErrPermissionDenied
	}
	return s.Repo.DeleteParticipations(ctx, s.DB, displayName, dishName)
}

// Leaderboard returns the top limit submitters ranked by submission count
// descending. A limit <= 0 falls back to the configured default. Returns
// ErrNoParticipations when nobody has participated yet.
func (s *ChallengeService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	tr := otel.Tracer("services/ChallengeService")
	ctx, span := tr.Start(ctx, "Leaderboard",
		trace.WithAttributes(attribute.Int("limit", limit)),
	)
	defer span.End()

	if limit <= 0 {
		limit = s.DefaultLeaderboardLimit
		if limit <= 0 {
			limit = 10
		}
	}

	rows, err := s.Repo.Leaderboard(ctx, s.DB, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoParticipations
	}

	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: r.UserName,
			Count:       r.Count,
		})
	}
	return out, nil
}
