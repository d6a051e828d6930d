// Package domain defines the persistence models for the weekly cooking
// challenge and the chatbot reply memory. These types are mapped with GORM
// and form the core data layer of the bot backend.
package domain

import (
	"time"
)

// Dish represents one weekly challenge. Dishes are append-only: a new row
// supersedes the previous one purely by recency of DateSet, and no row is
// ever updated or deleted in place.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: dish name as announced (empty strings are accepted).
//   - RecipeIdea: free-text recipe suggestion shown with the dish.
//   - ImageURL: optional attachment URL for the announcement.
//   - DateSet: creation timestamp; the row with the maximum DateSet is the
//     "current" dish. Indexed for the latest-dish query.
type Dish struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Name       string    `json:"name"        gorm:"type:varchar(255);not null"`
	RecipeIdea string    `json:"recipe_idea" gorm:"type:text;not null"`
	ImageURL   *string   `json:"image_url,omitempty" gorm:"type:text"`
	DateSet    time.Time `json:"date_set"    gorm:"index:idx_dishes_date_set"`
}

// TableName returns the database table name for Dish.
func (Dish) TableName() string { return "dishes" }

// Participation represents one user's submission against a specific dish.
// The dish is referenced by name rather than id, mirroring how admins and
// users talk about challenges.
//
// A user may participate at most once per dish. The unique index over
// (UserID, DishName) makes that rule atomic at the store, so two concurrent
// submissions cannot both land even though the service also performs a
// friendlier pre-insert check.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - UserID: stable platform identifier of the participant.
//   - UserName: display-name snapshot taken at submission time. Deletion by
//     admins matches on this snapshot (case-insensitive), not on UserID.
//   - DishName: name of the dish the submission belongs to.
//   - ImageURL: required photo of the cooked dish.
//   - CreatedAt: submission timestamp.
type Participation struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;uniqueIndex:ux_participation_user_dish,priority:1"`
	UserName  string    `json:"user_name"  gorm:"type:varchar(255);not null;index:idx_participation_name"`
	DishName  string    `json:"dish_name"  gorm:"type:varchar(255);not null;uniqueIndex:ux_participation_user_dish,priority:2"`
	ImageURL  string    `json:"image_url"  gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Participation.
func (Participation) TableName() string { return "participations" }

// ChatMemory links a sent bot reply to the text it contained. When a user
// replies to one of the bot's messages, the stored row supplies the previous
// turn as context for the next generation.
//
// The table is a bounded cache, not a log: inserts beyond the configured
// retention cap evict the oldest rows (see repo.PruneChatMemory).
//
// Fields:
//   - MessageID: platform id of the bot reply; primary key.
//   - UserID: id of the user the bot was replying to.
//   - BotResponse: the reply text as sent.
//   - CreatedAt: insertion timestamp, used for oldest-first eviction.
type ChatMemory struct {
	MessageID   string    `json:"message_id"   gorm:"type:varchar(64);primaryKey"`
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);not null"`
	BotResponse string    `json:"bot_response" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_chatbot_memory_created"`
}

// TableName returns the database table name for ChatMemory.
func (ChatMemory) TableName() string { return "chatbot_memory" }
