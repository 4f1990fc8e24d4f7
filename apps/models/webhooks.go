package models

import (
	"time"

	"github.com/getevo/restify"
)

// Webhook represents a webhook subscription
type Webhook struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	URL         string `gorm:"size:500;not null" json:"url"`
	Secret      string `gorm:"size:255" json:"-"` // Hidden from JSON responses for security
	Enabled     bool   `gorm:"default:1" json:"enabled"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Event subscriptions - boolean flags for each event type
	EventAll                bool `gorm:"default:0" json:"event_all"`
	EventProjectCreated     bool `gorm:"default:0" json:"event_project_created"`
	EventProjectUpdated     bool `gorm:"default:0" json:"event_project_updated"`
	EventProjectDeleted     bool `gorm:"default:0" json:"event_project_deleted"`
	EventAssignmentsCreated bool `gorm:"default:0" json:"event_assignments_created"`
	EventAssignmentUpdated  bool `gorm:"default:0" json:"event_assignment_updated"`
	EventAssignmentDeleted  bool `gorm:"default:0" json:"event_assignment_deleted"`
	EventEmployeeCreated    bool `gorm:"default:0" json:"event_employee_created"`
	EventEmployeeUpdated    bool `gorm:"default:0" json:"event_employee_updated"`
	EventBudgetChanged      bool `gorm:"default:0" json:"event_budget_changed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	restify.API
}

// IsSubscribedTo checks if the webhook is subscribed to a specific event
func (w *Webhook) IsSubscribedTo(event string) bool {
	if w.EventAll {
		return true
	}

	// Test events always pass through
	if event == WebhookEventWebhookTest {
		return true
	}

	switch event {
	case WebhookEventProjectCreated:
		return w.EventProjectCreated
	case WebhookEventProjectUpdated:
		return w.EventProjectUpdated
	case WebhookEventProjectDeleted:
		return w.EventProjectDeleted
	case WebhookEventAssignmentsCreated:
		return w.EventAssignmentsCreated
	case WebhookEventAssignmentUpdated:
		return w.EventAssignmentUpdated
	case WebhookEventAssignmentDeleted:
		return w.EventAssignmentDeleted
	case WebhookEventEmployeeCreated:
		return w.EventEmployeeCreated
	case WebhookEventEmployeeUpdated:
		return w.EventEmployeeUpdated
	case WebhookEventBudgetChanged:
		return w.EventBudgetChanged
	default:
		return false
	}
}

// WebhookDelivery represents a webhook delivery attempt
type WebhookDelivery struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	WebhookID uint   `gorm:"not null;index;fk:webhooks" json:"webhook_id"`
	Event     string `gorm:"size:100;not null" json:"event"`
	Success   bool   `gorm:"not null" json:"success"`

	// Request details for debugging
	RequestURL     string `gorm:"size:500" json:"request_url,omitempty"`
	RequestBody    string `gorm:"type:text" json:"request_body,omitempty"`
	RequestHeaders string `gorm:"type:text" json:"request_headers,omitempty"`

	// Response details
	StatusCode int    `gorm:"default:0" json:"status_code"`
	Response   string `gorm:"type:text" json:"response,omitempty"`

	// Duration in milliseconds
	DurationMs int64     `gorm:"default:0" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Webhook Webhook `gorm:"foreignKey:WebhookID;references:ID" json:"webhook,omitempty"`

	restify.API
}

// WebhookEvents defines available webhook event types
const (
	WebhookEventProjectCreated     = "capacity.project.created"
	WebhookEventProjectUpdated     = "capacity.project.updated"
	WebhookEventProjectDeleted     = "capacity.project.deleted"
	WebhookEventAssignmentsCreated = "capacity.assignments.created"
	WebhookEventAssignmentUpdated  = "capacity.assignment.updated"
	WebhookEventAssignmentDeleted  = "capacity.assignment.deleted"
	WebhookEventEmployeeCreated    = "capacity.employee.created"
	WebhookEventEmployeeUpdated    = "capacity.employee.updated"
	WebhookEventBudgetChanged      = "capacity.budget.changed"
	WebhookEventWebhookTest        = "webhook.test"
	WebhookEventAll                = "*"
)
