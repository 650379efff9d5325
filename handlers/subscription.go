// handlers/subscription.go
package handlers

import (
	"playarena-backend/middleware"
	"playarena-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSubscriptionRoutes(app *fiber.App, subscriptionService *services.SubscriptionService, matchService *services.MatchService) {
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Post("/subscription/purchase/:tier", subscriptionService.PurchaseSubscription)
	secured.Get("/subscription/status", subscriptionService.GetSubscriptionStatus)

	secured.Post("/match-requests", matchService.CreateMatchRequest)
	secured.Get("/match-requests", matchService.GetMatchRequests)
}
