// handlers/credits.go
package handlers

import (
	"playarena-backend/middleware"
	"playarena-backend/services"

	"github.com/gofiber/fiber/v2"
)

// SetupCreditRoutes wires the user-facing economy endpoints. Everything here
// acts on the authenticated user, so the whole group requires user context.
func SetupCreditRoutes(app *fiber.App, ledgerService *services.LedgerService, rewardService *services.RewardService, userService *services.UserService) {
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Get("/user/me", userService.GetMe)
	secured.Put("/user/game-profile", userService.UpsertGameProfile)

	secured.Get("/user/credits", ledgerService.GetCredits)
	secured.Get("/user/transactions", ledgerService.GetTransactions)
	secured.Post("/user/claim-reward", rewardService.ClaimDailyReward)

	secured.Post("/credits/deduct", ledgerService.DeductCredits)
	secured.Post("/credits/reward-ad", rewardService.RewardAdCredit)
}
