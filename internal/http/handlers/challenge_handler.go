// Challenge REST handlers.
//
// This file exposes read-only REST views of the weekly challenge for
// dashboards and the web frontend:
//   - GET /challenge/current
//   - GET /challenge/leaderboard
//
// The slash-command surface remains the write path; these endpoints only
// read.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tatowo/dishweek-backend/internal/services"
	"github.com/tatowo/dishweek-backend/internal/utils"
)

// maxLeaderboardLimit bounds the limit query parameter.
const maxLeaderboardLimit = 100

// CurrentDish godoc
// @ID          currentDish
// @Summary     Get the current dish of the week
// @Description Returns the most recently set dish and the days remaining in its window.
// @Tags        Challenge
// @Produce     json
//
// @Success     200  {object}  services.CurrentDish
// @Failure     404  {object}  handlers.ErrorResponse  "No dish set yet"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /challenge/current [get]
func (h *Handlers) CurrentDish(c *gin.Context) {
	cur, err := h.challenge.GetCurrentDish(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoDishSet) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no dish of the week has been set yet")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, cur)
}

// Leaderboard godoc
// @ID          leaderboard
// @Summary     Get the participation leaderboard
// @Description Returns the top submitters ranked by participation count.
// @Tags        Challenge
// @Produce     json
//
// @Param       limit  query  int  false  "Maximum entries"  minimum(1)  maximum(100)  default(10)
//
// @Success     200  {array}   services.LeaderboardEntry
// @Failure     404  {object}  handlers.ErrorResponse  "No participations yet"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /challenge/leaderboard [get]
func (h *Handlers) Leaderboard(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0) // 0 → service default
	if limit < 0 {
		limit = 0
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	entries, err := h.challenge.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, services.ErrNoParticipations) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "no participations found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, entries)
}
