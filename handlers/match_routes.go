// handlers/match_routes.go
package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"matchday-system/middleware"
	"matchday-system/models"
	"matchday-system/services"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService, statsService *services.StatsService) {
	// 🔐 Secured routes — require user context (email), enforced via middleware.
	// The gateway forwards paths like /api/v1/match/s/matches -> /s/matches
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/matches", createMatch(matchService))
	secured.Post("/matches/:id/respond", respondToInvite(matchService))
	secured.Post("/matches/:id/stats", submitStats(statsService))
	secured.Get("/matches/:id", getMatch(matchService))
	secured.Get("/matches", listMatches(matchService))
}

type createMatchRequest struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Roster     []string  `json:"roster"`
	Location   string    `json:"location"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	TrophyID   *string   `json:"trophy_id"`
}

func createMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createMatchRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		m, err := svc.CreateMatch(c.Context(), callerEmail(c), services.CreateMatchInput{
			HomeTeamID: req.HomeTeamID,
			AwayTeamID: req.AwayTeamID,
			Roster:     req.Roster,
			Location:   req.Location,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			TrophyID:   req.TrophyID,
		})
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

type respondRequest struct {
	Accept bool     `json:"accept"`
	Roster []string `json:"roster"`
}

func respondToInvite(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req respondRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		m, err := svc.RespondToInvite(c.Context(), callerEmail(c), c.Params("id"), req.Accept, req.Roster)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	}
}

type submitStatsRequest struct {
	Stats      []models.PlayerStat `json:"stats"`
	TeamRating *int                `json:"team_rating"`
}

func submitStats(svc *services.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req submitStatsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}

		res, err := svc.SubmitStats(c.Context(), callerEmail(c), c.Params("id"), req.Stats, req.TeamRating)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

func getMatch(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.GetMatch(c.Context(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(m)
	}
}

func listMatches(svc *services.MatchService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var statuses []models.MatchStatus
		if raw := c.Query("status"); raw != "" {
			statuses = append(statuses, models.MatchStatus(raw))
		}

		matches, err := svc.ListByStatus(c.Context(), statuses...)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"matches": matches, "count": len(matches)})
	}
}

func callerEmail(c *fiber.Ctx) string {
	email, _ := c.Locals("user_email").(string)
	return email
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidState):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrDependencyTimeout):
		status = fiber.StatusServiceUnavailable
	default:
		log.Printf("❌ [MATCH_HTTP] unexpected error on %s: %v", c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
