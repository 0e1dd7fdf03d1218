package services

import (
	"context"
	"time"

	"github.com/yigit/internflow/internal/app/notify"
)

// Services defined in this package:
// - WorkflowService: applies status transitions and appends the approval ledger
// - InternshipService: internship lifecycle, advisor assignment and documents
// - ApprovalService: read access to the approval ledger
// - NotificationService: the caller's notification inbox
// - AuthService: login and profile lookup

// EventDispatcher accepts notification events without blocking
type EventDispatcher interface {
	Dispatch(events ...notify.Event) int
}

// planTimeout bounds the post-commit reads that compute notification recipients
const planTimeout = 3 * time.Second

// detach returns a context that survives the request but not forever
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), planTimeout)
}

func optionalComment(comment string) *string {
	if comment == "" {
		return nil
	}
	return &comment
}
