// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"playarena-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredProfile matches the JSON the profile service returns for changed users.
type MirroredProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type profileChangesResponse struct {
	Users []MirroredProfile `json:"users"`
}

// ProfileSyncWorker keeps local usernames/avatars in step with the profile
// service. The economy never depends on this data; it is display-only, so a
// failed sync just means stale names until the next tick.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
	lastSync     time.Time
}

func NewProfileSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting profile sync worker (profile service → users)…")
	w.lastSync = time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Profile sync worker stopped")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()
			if err := w.syncBatch(ctx, w.lastSync); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
				// Keep lastSync so the same window is retried next tick
				continue
			}
			w.lastSync = tickTime
		}
	}
}

func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL %q: %w", w.baseURL, err)
	}
	base = base.JoinPath(w.endpointPath)

	q := base.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	base.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", base.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call profile service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile service returned %d: %s", resp.StatusCode, string(body))
	}

	var changes profileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("failed to decode profile service response: %w", err)
	}
	if len(changes.Users) == 0 {
		return nil
	}

	users := make([]models.User, 0, len(changes.Users))
	for _, p := range changes.Users {
		if p.ExternalID == "" {
			continue
		}
		users = append(users, models.User{
			ID:               p.ExternalID,
			Username:         p.Username,
			AvatarURL:        p.AvatarURL,
			Level:            1,
			SubscriptionTier: models.TierFree,
		})
	}
	if len(users) == 0 {
		return nil
	}

	// Upsert display fields only — never touch balances or reward gates here
	if err := w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "updated_at"}),
	}).Create(&users).Error; err != nil {
		return fmt.Errorf("failed to upsert %d user(s): %w", len(users), err)
	}

	log.Printf("📥 Synced %d profile change(s)", len(users))
	return nil
}
