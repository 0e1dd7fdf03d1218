package services

import (
	"context"

	"github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/repositories"
	"github.com/yigit/internflow/internal/pkg/helpers"
)

const defaultInboxLimit = 50

// NotificationService defines the interface for the notification inbox
type NotificationService interface {
	ListNotifications(ctx context.Context, actorID int64, unreadOnly bool, limit uint64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, actorID, notificationID int64) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	store repositories.Store
	authz *auth.AuthorizationService
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store repositories.Store, authz *auth.AuthorizationService) NotificationService {
	return &notificationServiceImpl{
		store: store,
		authz: authz,
	}
}

// ListNotifications returns the actor's inbox, newest first
func (s *notificationServiceImpl) ListNotifications(ctx context.Context, actorID int64, unreadOnly bool, limit uint64) ([]*models.Notification, error) {
	p, err := s.authz.ResolvePrincipal(ctx, s.store, actorID)
	if err != nil {
		return nil, err
	}
	return s.store.ListNotifications(ctx, p.UserID, unreadOnly, helpers.ClampLimit(limit, defaultInboxLimit, maxListLimit))
}

// MarkRead marks one of the actor's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actorID, notificationID int64) error {
	p, err := s.authz.ResolvePrincipal(ctx, s.store, actorID)
	if err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, p.UserID, notificationID)
}
