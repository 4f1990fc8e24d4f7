package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"

	"github.com/teamcapacity/capacity-backend/apps/models"
	appnats "github.com/teamcapacity/capacity-backend/apps/nats"
)

// Retry configuration
const (
	MaxRetries     = 5
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 60 * time.Second
)

// WebhookPayload represents the structure of data sent to webhooks
type WebhookPayload struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// SendWebhook delivers one event to one webhook endpoint and records the attempt
func SendWebhook(webhook *models.Webhook, event string, data map[string]any) error {
	if !webhook.Enabled {
		return nil
	}

	if !webhook.IsSubscribedTo(event) {
		return nil
	}

	payload := WebhookPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	var prettyBody bytes.Buffer
	json.Indent(&prettyBody, jsonData, "", "  ")

	req, err := http.NewRequest("POST", webhook.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CapacityBackend-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-ID", fmt.Sprintf("%d", webhook.ID))

	if webhook.Secret != "" {
		req.Header.Set("Authorization", webhook.Secret)
	}

	headersJSON := formatHeaders(req.Header)

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	startTime := time.Now()
	resp, err := client.Do(req)
	durationMs := time.Since(startTime).Milliseconds()

	if err != nil {
		logWebhookDelivery(webhook.ID, event, false, webhook.URL, prettyBody.String(), headersJSON, 0, err.Error(), durationMs)
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	responseText := string(respBody)
	if len(responseText) > 2000 {
		responseText = responseText[:2000] + "... (truncated)"
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	logWebhookDelivery(webhook.ID, event, success, webhook.URL, prettyBody.String(), headersJSON, resp.StatusCode, responseText, durationMs)

	if !success {
		return fmt.Errorf("webhook returned non-success status: %d", resp.StatusCode)
	}

	return nil
}

// SendWebhookWithRetry delivers one event with exponential backoff on failure
func SendWebhookWithRetry(webhook *models.Webhook, event string, data map[string]any) error {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		err := SendWebhook(webhook, event, data)
		if err == nil {
			if attempt > 0 {
				log.Info("Webhook succeeded on retry %d for %s to %s", attempt, event, webhook.URL)
			}
			return nil
		}

		lastErr = err

		if attempt == MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt)
		log.Warning("Webhook failed (attempt %d/%d) for %s to %s: %v. Retrying in %v",
			attempt+1, MaxRetries+1, event, webhook.URL, err, backoff)

		time.Sleep(backoff)
	}

	log.Error("Webhook failed after %d attempts for %s to %s: %v",
		MaxRetries+1, event, webhook.URL, lastErr)
	return fmt.Errorf("webhook failed after %d retries: %w", MaxRetries, lastErr)
}

// BroadcastWebhook fans an event out to every enabled webhook and publishes it
// on NATS for in-process consumers such as the live board feed
func BroadcastWebhook(event string, data map[string]any) {
	publishEvent(event, data)

	var webhooks []models.Webhook
	if err := db.Where("enabled = ?", true).Find(&webhooks).Error; err != nil {
		log.Error("Failed to fetch webhooks for broadcast: %v", err)
		return
	}

	for _, webhook := range webhooks {
		go func(w models.Webhook) {
			if err := SendWebhookWithRetry(&w, event, data); err != nil {
				log.Error("Failed to send webhook to %s: %v", w.URL, err)
			}
		}(webhook)
	}
}

// publishEvent pushes the event onto NATS so connected websocket clients
// receive board updates without polling
func publishEvent(event string, data map[string]any) {
	payload := WebhookPayload{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Error("Failed to marshal event %s: %v", event, err)
		return
	}

	if err := appnats.Publish(event, jsonData); err != nil {
		log.Debug("Event %s not published to NATS: %v", event, err)
	}
}

// formatHeaders converts http.Header to JSON string for logging
func formatHeaders(headers http.Header) string {
	headerMap := make(map[string]string)
	for key, values := range headers {
		headerMap[key] = strings.Join(values, ", ")
	}
	jsonBytes, _ := json.Marshal(headerMap)
	return string(jsonBytes)
}

func logWebhookDelivery(webhookID uint, event string, success bool, url, body, headers string, statusCode int, response string, durationMs int64) {
	delivery := models.WebhookDelivery{
		WebhookID:      webhookID,
		Event:          event,
		Success:        success,
		RequestURL:     url,
		RequestBody:    body,
		RequestHeaders: headers,
		StatusCode:     statusCode,
		Response:       response,
		DurationMs:     durationMs,
	}

	if err := db.Create(&delivery).Error; err != nil {
		log.Error("Failed to log webhook delivery: %v", err)
	}
}

// calculateBackoff calculates exponential backoff: 1s, 2s, 4s, 8s... capped at MaxBackoff
func calculateBackoff(attempt int) time.Duration {
	backoff := float64(InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(MaxBackoff) {
		backoff = float64(MaxBackoff)
	}
	return time.Duration(backoff)
}
