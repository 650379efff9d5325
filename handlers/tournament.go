// handlers/tournament.go
package handlers

import (
	"playarena-backend/middleware"
	"playarena-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService) {
	// 🔓 Read-only listing — still behind Gateway auth, no user context needed
	app.Get("/api/tournaments", tournamentService.GetAllTournaments)
	app.Get("/api/tournaments/:id", tournamentService.GetTournamentByID)

	// 🔐 Everything that mutates requires the resolved user
	secured := app.Group("/api", middleware.UserContextMiddleware())

	secured.Post("/tournaments", tournamentService.CreateTournament)
	secured.Delete("/tournaments/:id", tournamentService.DeleteTournament)
	secured.Patch("/tournaments/:id/status", tournamentService.UpdateTournamentStatus)
	secured.Post("/tournaments/:id/banner", tournamentService.UploadBanner)

	secured.Post("/tournaments/:id/join-with-coins", tournamentService.JoinWithCoins)
	secured.Delete("/tournaments/:id/participants/:pid", tournamentService.RemoveParticipant)

	secured.Get("/tournaments/:id/messages", tournamentService.GetMessages)
	secured.Post("/tournaments/:id/messages", tournamentService.SendMessage)
}
