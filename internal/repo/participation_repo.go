// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Participation model: submissions, duplicate detection, admin deletion,
// and the leaderboard aggregate.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/domain"
)

// ErrDuplicate indicates that a participation already exists for the
// given (user_id, dish_name) pair.
var ErrDuplicate = errors.New("duplicate participation")

// LeaderboardRow is one aggregated entry of the participation leaderboard.
type LeaderboardRow struct {
	UserName string `json:"user_name"`
	Count    int64  `json:"count"`
}

// CreateParticipation inserts a new submission row and returns ErrDuplicate
// when the (user_id, dish_name) unique index rejects it. The index is the
// atomic guard; callers may additionally pre-check with HasParticipation for
// a friendlier message, but they do not have to.
func CreateParticipation(ctx context.Context, db *gorm.DB, userID, userName, dishName, imageURL string, createdAt time.Time) (*domain.Participation, error) {
	p := &domain.Participation{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		DishName:  dishName,
		ImageURL:  imageURL,
		CreatedAt: createdAt,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// HasParticipation reports whether userID already submitted for dishName.
func HasParticipation(ctx context.Context, db *gorm.DB, userID, dishName string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Participation{}).
		Where("user_id = ? AND dish_name = ?", userID, dishName).
		Count(&total).Error
	return total > 0, err
}

// DeleteParticipations removes all submissions whose stored display name
// matches userName case-insensitively and whose dish name matches dishName
// exactly. It returns the number of rows removed; zero matches is not an
// error (the operation is idempotent).
func DeleteParticipations(ctx context.Context, db *gorm.DB, userName, dishName string) (int64, error) {
	res := db.WithContext(ctx).
		Where("LOWER(user_name) = ? AND dish_name = ?", strings.ToLower(userName), dishName).
		Delete(&domain.Participation{})
	return res.RowsAffected, res.Error
}

// Leaderboard groups submissions by display name and returns the top limit
// entries ordered by descending count. Tie order among equal counts follows
// the grouping order SQLite produces and is not guaranteed stable.
func Leaderboard(ctx context.Context, db *gorm.DB, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := db.WithContext(ctx).
		Model(&domain.Participation{}).
		Select("user_name, COUNT(*) AS count").
		Group("user_name").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// CountParticipations returns the total number of submissions for a dish.
// An empty dishName counts every submission.
func CountParticipations(ctx context.Context, db *gorm.DB, dishName string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Participation{})
	if dishName != "" {
		q = q.Where("dish_name = ?", dishName)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}
