package service

import (
	"context"
)

// MailEvent is a rendered-ready email request handed to the mail transport.
type MailEvent struct {
	RequestID string               `json:"request_id,omitempty"` // For distributed tracing
	EventID   string               `json:"event_id"`
	Template  NotificationTemplate `json:"template"`
	Recipient string               `json:"recipient"`
	Link      string               `json:"link"`
	Context   map[string]string    `json:"context,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishMailEvent publishes a mail event for async delivery
	PublishMailEvent(ctx context.Context, event *MailEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// MailMessage is a fully rendered email.
type MailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MailSender delivers a rendered email through a concrete transport.
type MailSender interface {
	Send(ctx context.Context, message *MailMessage) error
}
