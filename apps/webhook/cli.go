package webhook

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"

	"github.com/teamcapacity/capacity-backend/apps/models"
)

// GenerateMockWebhook creates a mock webhook for testing when --generate-webhook is passed
func GenerateMockWebhook() {
	if args.Get("--generate-webhook") == "" {
		return
	}

	url := args.Get("--url")
	if url == "" {
		url = "https://webhook.site/unique-id-here"
	}

	webhook := models.Webhook{
		Name:        fmt.Sprintf("Test Integration - %d", rand.Intn(1000)),
		URL:         url,
		Secret:      generateRandomSecret(),
		Enabled:     true,
		Description: fmt.Sprintf("Auto-generated mock webhook for testing - %s", time.Now().Format(time.RFC3339)),
	}

	webhook.EventProjectCreated = rand.Intn(2) == 1
	webhook.EventProjectUpdated = rand.Intn(2) == 1
	webhook.EventProjectDeleted = rand.Intn(2) == 1
	webhook.EventAssignmentsCreated = rand.Intn(2) == 1
	webhook.EventAssignmentUpdated = rand.Intn(2) == 1
	webhook.EventAssignmentDeleted = rand.Intn(2) == 1
	webhook.EventEmployeeCreated = rand.Intn(2) == 1
	webhook.EventEmployeeUpdated = rand.Intn(2) == 1
	webhook.EventBudgetChanged = rand.Intn(2) == 1

	// Ensure at least one event is subscribed
	if !webhook.EventProjectCreated && !webhook.EventProjectUpdated &&
		!webhook.EventProjectDeleted && !webhook.EventAssignmentsCreated &&
		!webhook.EventAssignmentUpdated && !webhook.EventAssignmentDeleted &&
		!webhook.EventEmployeeCreated && !webhook.EventEmployeeUpdated &&
		!webhook.EventBudgetChanged {
		webhook.EventProjectCreated = true
	}

	if rand.Intn(5) == 0 {
		webhook.EventAll = true
	}

	if err := db.Create(&webhook).Error; err != nil {
		fmt.Printf("Failed to create mock webhook: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Mock webhook created successfully!")
	fmt.Printf("   ID: %d\n", webhook.ID)
	fmt.Printf("   Name: %s\n", webhook.Name)
	fmt.Printf("   URL: %s\n", webhook.URL)
	fmt.Printf("   Secret: %s\n", webhook.Secret)
	fmt.Printf("   All Events: %v\n", webhook.EventAll)

	if args.Get("--send") != "" {
		fmt.Println("Sending test webhook...")

		testData := map[string]any{
			"test":       true,
			"message":    "This is a mock test webhook",
			"webhook_id": webhook.ID,
			"timestamp":  time.Now().Format(time.RFC3339),
		}

		if err := SendWebhook(&webhook, models.WebhookEventWebhookTest, testData); err != nil {
			fmt.Printf("Failed to send test webhook: %v\n", err)
		} else {
			fmt.Println("Test webhook sent successfully!")
		}
	}

	os.Exit(0)
}

// generateRandomSecret creates a random secret key
func generateRandomSecret() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = charset[rand.Intn(len(charset))]
	}
	return string(secret)
}
