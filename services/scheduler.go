// services/scheduler.go
package services

import (
	"log"
	"time"

	"playarena-backend/models"

	"github.com/go-co-op/gocron/v2"
)

// StartActivationScheduler flips due upcoming tournaments to active once
// their start time passes. Completion stays a host/admin action.
func (s *TournamentService) StartActivationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()
			result := s.DB.Model(&models.Tournament{}).
				Where("status = ? AND start_time IS NOT NULL AND start_time <= ?", models.TournamentUpcoming, now).
				Update("status", models.TournamentActive)
			if result.Error != nil {
				log.Printf("[Scheduler] DB error: %v", result.Error)
				return
			}
			if result.RowsAffected > 0 {
				log.Printf("✅ Activated %d tournament(s)", result.RowsAffected)
			}
		}),
	)
}
