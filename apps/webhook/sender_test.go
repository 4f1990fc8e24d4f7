package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamcapacity/capacity-backend/apps/models"
)

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 1*time.Second, calculateBackoff(0))
	assert.Equal(t, 2*time.Second, calculateBackoff(1))
	assert.Equal(t, 4*time.Second, calculateBackoff(2))
	assert.Equal(t, 32*time.Second, calculateBackoff(5))

	// Capped at MaxBackoff
	assert.Equal(t, MaxBackoff, calculateBackoff(10))
	assert.Equal(t, MaxBackoff, calculateBackoff(100))
}

func TestSendWebhookSkipsDisabledAndUnsubscribed(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	disabled := &models.Webhook{Enabled: false, URL: server.URL, EventAll: true}
	require.NoError(t, SendWebhook(disabled, models.WebhookEventProjectCreated, nil))

	unsubscribed := &models.Webhook{Enabled: true, URL: server.URL, EventProjectDeleted: true}
	require.NoError(t, SendWebhook(unsubscribed, models.WebhookEventProjectCreated, nil))

	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "no request should be sent")
}

func TestWebhookPayloadShape(t *testing.T) {
	payload := WebhookPayload{
		Event:     models.WebhookEventBudgetChanged,
		Timestamp: "2025-06-02T10:00:00Z",
		Data:      map[string]any{"project_id": "p1", "department": "HD"},
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "capacity.budget.changed", decoded["event"])
	assert.Equal(t, "2025-06-02T10:00:00Z", decoded["timestamp"])

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "HD", data["department"])
}
