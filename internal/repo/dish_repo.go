// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Dish model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When no dish exists, LatestDish returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tatowo/dishweek-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateDish appends a new Dish row stamped with the given time. There is no
// "close previous dish" step: recency alone decides which dish is current.
func CreateDish(ctx context.Context, db *gorm.DB, name, recipeIdea string, imageURL *string, dateSet time.Time) (*domain.Dish, error) {
	d := &domain.Dish{
		ID:         uuid.NewString(),
		Name:       name,
		RecipeIdea: recipeIdea,
		ImageURL:   imageURL,
		DateSet:    dateSet,
	}
	if err := db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// LatestDish returns the dish with the maximum DateSet, i.e. the current
// challenge. Ties on DateSet are broken by ID to keep the result
// deterministic. Returns ErrNotFound when the table is empty.
func LatestDish(ctx context.Context, db *gorm.DB) (*domain.Dish, error) {
	var d domain.Dish
	err := db.WithContext(ctx).
		Order("date_set DESC, id DESC").
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CountDishes returns the total number of dishes ever set.
func CountDishes(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Dish{}).Count(&total).Error
	return total, err
}
