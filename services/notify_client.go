// services/notify_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// NotifyClient is the narrow interface to the external push-notification
// service. Delivery is somebody else's problem; we only hand off the payload.
type NotifyClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewNotifyClientFromEnv returns nil when PUSH_SERVICE_URL is unset so
// callers can treat push as optional.
func NewNotifyClientFromEnv() *NotifyClient {
	baseURL := os.Getenv("PUSH_SERVICE_URL")
	if baseURL == "" {
		log.Println("⚠️  PUSH_SERVICE_URL not set — push notifications disabled")
		return nil
	}
	return &NotifyClient{
		BaseURL: baseURL,
		Token:   os.Getenv("GATEWAY_SERVICE_TOKEN"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendPushNotification posts a notification for the given users.
func (c *NotifyClient) SendPushNotification(userIDs []string, title, body string) error {
	url := fmt.Sprintf("%s/api/v1/notifications/push", c.BaseURL)

	payload := map[string]interface{}{
		"user_ids": userIDs,
		"title":    title,
		"body":     body,
	}
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("push service returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
