// services/tournament_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"playarena-backend/models"
	"playarena-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// statusRank orders the tournament lifecycle; transitions must strictly
// increase.
var statusRank = map[string]int{
	models.TournamentUpcoming:  0,
	models.TournamentActive:    1,
	models.TournamentCompleted: 2,
}

type TournamentService struct {
	DB     *gorm.DB
	Ledger *LedgerService
	Notify *NotifyClient // nil when push is disabled
}

func NewTournamentService(db *gorm.DB, ledger *LedgerService, notify *NotifyClient) *TournamentService {
	return &TournamentService{DB: db, Ledger: ledger, Notify: notify}
}

// isAdmin checks the roles forwarded by the Gateway.
func isAdmin(c *fiber.Ctx) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// CreateTournament handles POST /api/tournaments.
func (s *TournamentService) CreateTournament(c *fiber.Ctx) error {
	hostID := c.Locals("user_id").(string)

	var req struct {
		Name            string `json:"name" validate:"required"`
		GameName        string `json:"game_name" validate:"required"`
		Description     string `json:"description"`
		PrizePool       string `json:"prize_pool"`
		EntryFee        int64  `json:"entry_fee"`
		MaxParticipants int    `json:"max_participants" validate:"gte=2"`
		PlayersPerTeam  int    `json:"players_per_team"`
		StartTime       string `json:"start_time"` // RFC3339, optional
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.GameName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name and game_name are required"})
	}
	if req.MaxParticipants < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "max_participants must be at least 2"})
	}
	if req.EntryFee < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "entry_fee must be non-negative"})
	}
	if req.PlayersPerTeam < 1 {
		req.PlayersPerTeam = 1
	}

	var startTime *time.Time
	if req.StartTime != "" {
		t, err := time.Parse(time.RFC3339, req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid start_time (use RFC3339)"})
		}
		startTime = &t
	}

	tournament := &models.Tournament{
		ID:              uuid.NewString(),
		Slug:            slug.Make(req.Name),
		Name:            req.Name,
		GameName:        req.GameName,
		Description:     req.Description,
		PrizePool:       req.PrizePool,
		EntryFee:        req.EntryFee,
		MaxParticipants: req.MaxParticipants,
		PlayersPerTeam:  req.PlayersPerTeam,
		StartTime:       startTime,
		Status:          models.TournamentUpcoming,
		CreatedBy:       hostID,
	}
	if err := s.DB.Create(tournament).Error; err != nil {
		log.Printf("DB Error creating tournament: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to create tournament"})
	}
	return c.Status(fiber.StatusCreated).JSON(tournament)
}

// GetAllTournaments handles GET /api/tournaments. The caller partitions
// active/completed by status.
func (s *TournamentService) GetAllTournaments(c *fiber.Ctx) error {
	var tournaments []models.Tournament
	if err := s.DB.Order("created_at DESC").Find(&tournaments).Error; err != nil {
		log.Printf("ERROR fetching tournaments: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to fetch tournaments"})
	}
	return c.JSON(tournaments)
}

// GetTournamentByID handles GET /api/tournaments/:id.
func (s *TournamentService) GetTournamentByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var tournament models.Tournament
	if err := s.DB.Preload("Participants").First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		log.Printf("ERROR fetching tournament %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	var count int64
	s.DB.Model(&models.TournamentParticipant{}).Where("tournament_id = ?", id).Count(&count)
	tournament.ParticipantsCount = count
	tournament.AvailableSlots = int64(tournament.MaxParticipants) - count

	return c.JSON(tournament)
}

// JoinWithCoins handles POST /api/tournaments/:id/join-with-coins.
// The entry-fee deduction and the participant insert are one atomic unit:
// if either half fails, neither is applied.
func (s *TournamentService) JoinWithCoins(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	userID := c.Locals("user_id").(string)

	var req struct {
		InGameName  string   `json:"in_game_name" validate:"required"`
		InGameID    string   `json:"in_game_id" validate:"required"`
		TeammateIDs []string `json:"teammate_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}
	if req.InGameName == "" || req.InGameID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "in_game_name and in_game_id are required"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	// Completed tournaments refuse joins at the data layer, not just in the UI
	if tournament.Status == models.TournamentCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "tournament has already completed"})
	}

	if tournament.PlayersPerTeam > 1 && len(req.TeammateIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "teammate_ids required for team tournaments"})
	}

	var existing models.TournamentParticipant
	if err := s.DB.Where("tournament_id = ? AND user_id = ?", tournamentID, userID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "already registered for this tournament"})
	}

	if tournament.MaxParticipants > 0 {
		var count int64
		s.DB.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ?", tournamentID).
			Count(&count)
		if int(count) >= tournament.MaxParticipants {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "tournament is full"})
		}
	}

	if _, err := EnsureUser(s.DB, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	status := models.ParticipantRegistered
	if tournament.PlayersPerTeam > 1 {
		// Team registration stays pending until teammates accept
		status = models.ParticipantPending
	}

	participant := models.TournamentParticipant{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		UserID:       userID,
		InGameID:     req.InGameID,
		InGameName:   req.InGameName,
		TeammateIDs:  strings.Join(req.TeammateIDs, ","),
		Status:       status,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if tournament.EntryFee > 0 {
			if _, err := s.Ledger.DeductTx(tx, userID, tournament.EntryFee, models.TxTournamentEntry); err != nil {
				return err
			}
		}
		return tx.Create(&participant).Error
	})
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient credits"})
	case err != nil:
		log.Printf("Join failed for user %s in tournament %s: %v", userID, tournamentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to join tournament"})
	}

	return c.Status(fiber.StatusCreated).JSON(participant)
}

// RemoveParticipant handles DELETE /api/tournaments/:id/participants/:pid.
// Only the tournament host or an admin may remove.
func (s *TournamentService) RemoveParticipant(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	participantID := c.Params("pid")
	requesterID := c.Locals("user_id").(string)

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	if tournament.CreatedBy != requesterID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "only the host or an admin can remove participants"})
	}

	result := s.DB.Where("tournament_id = ?", tournamentID).
		Delete(&models.TournamentParticipant{}, "id = ?", participantID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "participant not found"})
	}
	return c.JSON(fiber.Map{"message": "participant removed"})
}

// GetMessages handles GET /api/tournaments/:id/messages, newest first.
func (s *TournamentService) GetMessages(c *fiber.Ctx) error {
	tournamentID := c.Params("id")

	if err := s.DB.First(&models.Tournament{}, "id = ?", tournamentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
	}

	var messages []models.TournamentMessage
	if err := s.DB.Where("tournament_id = ?", tournamentID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to fetch messages"})
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/tournaments/:id/messages. The announcement
// flag is only honoured for the host or an admin; everyone else posts a
// regular query.
func (s *TournamentService) SendMessage(c *fiber.Ctx) error {
	tournamentID := c.Params("id")
	senderID := c.Locals("user_id").(string)

	var req struct {
		Message        string `json:"message" validate:"required"`
		IsAnnouncement bool   `json:"is_announcement"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "message is required"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", tournamentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	isHost := tournament.CreatedBy == senderID || isAdmin(c)

	msg := models.TournamentMessage{
		ID:             uuid.NewString(),
		TournamentID:   tournamentID,
		SenderID:       senderID,
		Message:        req.Message,
		IsAnnouncement: req.IsAnnouncement && isHost,
	}
	if err := s.DB.Create(&msg).Error; err != nil {
		log.Printf("DB Error creating message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to send message"})
	}

	if msg.IsAnnouncement && s.Notify != nil {
		go s.fanOutAnnouncement(tournament, msg.Message)
	}

	return c.Status(fiber.StatusCreated).JSON(msg)
}

// fanOutAnnouncement pushes an announcement to all participants. Best-effort:
// failures are logged, never surfaced to the poster.
func (s *TournamentService) fanOutAnnouncement(tournament models.Tournament, body string) {
	var participants []models.TournamentParticipant
	if err := s.DB.Where("tournament_id = ?", tournament.ID).Find(&participants).Error; err != nil {
		log.Printf("❌ Announcement fan-out: failed to load participants for %s: %v", tournament.ID, err)
		return
	}
	if len(participants) == 0 {
		return
	}
	userIDs := make([]string, len(participants))
	for i, p := range participants {
		userIDs[i] = p.UserID
	}
	title := fmt.Sprintf("📣 %s", tournament.Name)
	if err := s.Notify.SendPushNotification(userIDs, title, body); err != nil {
		log.Printf("❌ Announcement fan-out failed for tournament %s: %v", tournament.ID, err)
	}
}

// UpdateTournamentStatus handles PATCH /api/tournaments/:id/status.
// Lifecycle is forward-only: upcoming → active → completed.
func (s *TournamentService) UpdateTournamentStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	requesterID := c.Locals("user_id").(string)

	var req struct {
		Status string `json:"status" validate:"oneof=upcoming active completed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid JSON"})
	}
	newRank, ok := statusRank[req.Status]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid status"})
	}

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}

	if tournament.CreatedBy != requesterID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "only the host or an admin can change status"})
	}
	if newRank <= statusRank[tournament.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": fmt.Sprintf("cannot move status from %s to %s", tournament.Status, req.Status),
		})
	}

	if err := s.DB.Model(&tournament).Update("status", req.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "status update failed"})
	}
	tournament.Status = req.Status
	return c.JSON(tournament)
}

// DeleteTournament handles DELETE /api/tournaments/:id, cascading
// participants and messages in one transaction.
func (s *TournamentService) DeleteTournament(c *fiber.Ctx) error {
	id := c.Params("id")
	requesterID := c.Locals("user_id").(string)

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}
	if tournament.CreatedBy != requesterID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "only the host or an admin can delete a tournament"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.TournamentMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tournament_id = ?", id).Delete(&models.TournamentParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tournament{}, "id = ?", id).Error
	})
	if err != nil {
		log.Printf("ERROR deleting tournament %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "delete failed"})
	}
	return c.JSON(fiber.Map{"message": "tournament deleted"})
}

// UploadBanner handles POST /api/tournaments/:id/banner (multipart "banner").
func (s *TournamentService) UploadBanner(c *fiber.Ctx) error {
	id := c.Params("id")
	requesterID := c.Locals("user_id").(string)

	var tournament models.Tournament
	if err := s.DB.First(&tournament, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "tournament not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "DB error"})
	}
	if tournament.CreatedBy != requesterID && !isAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "only the host or an admin can change the banner"})
	}

	banner, err := c.FormFile("banner")
	if err != nil || banner.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "banner file is required"})
	}

	ext := filepath.Ext(banner.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	key := "tournaments/banners/" + uuid.NewString() + ext
	url, err := utils.UploadFileToR2(banner, key)
	if err != nil {
		log.Printf("ERROR uploading banner for tournament %s: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to upload banner"})
	}

	if err := s.DB.Model(&tournament).Update("banner_url", url).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to save banner"})
	}
	tournament.BannerURL = url
	return c.JSON(tournament)
}
