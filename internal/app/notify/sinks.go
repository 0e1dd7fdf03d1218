package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/pkg/email"
)

// Sink delivers an event through one channel
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// ErrHubSaturated is returned when the live hub refuses a push
var ErrHubSaturated = errors.New("live notification hub is saturated")

// InboxSink persists events as notification rows
type InboxSink struct {
	store repositories.NotificationStore
}

// NewInboxSink creates an InboxSink
func NewInboxSink(store repositories.NotificationStore) *InboxSink {
	return &InboxSink{store: store}
}

// Name implements Sink
func (s *InboxSink) Name() string { return "inbox" }

// Deliver implements Sink
func (s *InboxSink) Deliver(ctx context.Context, e Event) error {
	_, err := s.store.CreateNotification(ctx, &models.Notification{
		RecipientID:  e.RecipientID,
		InternshipID: e.InternshipID,
		Status:       e.Status,
		Title:        e.Subject(),
		Message:      e.Message(),
	})
	return err
}

// EmailSink mails events to the recipient's address
type EmailSink struct {
	users  repositories.UserStore
	sender email.Sender
}

// NewEmailSink creates an EmailSink
func NewEmailSink(users repositories.UserStore, sender email.Sender) *EmailSink {
	return &EmailSink{users: users, sender: sender}
}

// Name implements Sink
func (s *EmailSink) Name() string { return "email" }

// Deliver implements Sink. Inactive users are skipped silently.
func (s *EmailSink) Deliver(ctx context.Context, e Event) error {
	user, err := s.users.GetUser(ctx, e.RecipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if !user.IsActive || user.Email == "" {
		return nil
	}

	subject := e.Subject()
	body := email.RenderHTML(subject, user.FullName(), e.Message())
	return s.sender.Send(ctx, email.Recipient{Email: user.Email, Name: user.FullName()}, subject, body)
}

// Pusher is the part of the websocket hub the live sink needs
type Pusher interface {
	SendToUser(userID int64, payload interface{}) bool
}

// HubSink pushes events to the recipient's open websocket sessions
type HubSink struct {
	hub Pusher
}

// NewHubSink creates a HubSink
func NewHubSink(hub Pusher) *HubSink {
	return &HubSink{hub: hub}
}

// Name implements Sink
func (s *HubSink) Name() string { return "live" }

// Deliver implements Sink
func (s *HubSink) Deliver(_ context.Context, e Event) error {
	if !s.hub.SendToUser(e.RecipientID, e) {
		return ErrHubSaturated
	}
	return nil
}
