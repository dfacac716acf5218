package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"matchday-system/models"
	"matchday-system/store"
)

// Notifier is the best-effort message sink. Callers never propagate its
// failures; use Send for the log-and-swallow discipline.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, title, message string, extra map[string]string) error
}

// StoreNotifier persists notifications as rows; the daily sweeper
// prunes them after seven days.
type StoreNotifier struct {
	Store store.Store
}

func NewStoreNotifier(st store.Store) *StoreNotifier {
	return &StoreNotifier{Store: st}
}

func (n *StoreNotifier) Notify(ctx context.Context, recipients []string, title, message string, extra map[string]string) error {
	var firstErr error
	for _, r := range recipients {
		err := n.Store.InsertNotification(ctx, &models.Notification{
			ID:        uuid.NewString(),
			Recipient: r,
			Title:     title,
			Message:   message,
			Context:   extra,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Send fans out a notification and swallows any failure. Delivery is
// never part of the caller's transaction.
func Send(ctx context.Context, n Notifier, recipients []string, title, message string, extra map[string]string) {
	if n == nil || len(recipients) == 0 {
		return
	}
	if err := n.Notify(ctx, recipients, title, message, extra); err != nil {
		log.Printf("[NOTIFY] ⚠️ delivery failed (%s → %d recipients): %v", title, len(recipients), err)
	}
}
