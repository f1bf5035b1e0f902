package services

import (
	"context"

	"aiwealth/internal/core"
	"aiwealth/internal/storage"
)

// Notifications reads and acknowledges threshold alerts. Creation
// happens only inside the ledger's expense transaction.
type Notifications struct {
	store *storage.Store
}

func NewNotifications(store *storage.Store) *Notifications {
	return &Notifications{store: store}
}

// NotificationView is a notification shaped for the UI.
type NotificationView struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Type    string `json:"type"`
	Date    string `json:"date"`
}

// List returns the newest notifications, unread only unless
// includeRead is set.
func (n *Notifications) List(ctx context.Context, limit int, includeRead bool) ([]NotificationView, error) {
	if limit <= 0 {
		limit = 5
	}

	notifications, err := n.store.ListNotifications(ctx, limit, includeRead)
	if err != nil {
		return nil, err
	}

	views := make([]NotificationView, 0, len(notifications))
	for _, notif := range notifications {
		views = append(views, NotificationView{
			ID:      notif.ID,
			Message: notif.Message,
			Status:  notif.Status,
			Type:    notif.Type,
			Date:    notif.CreatedAt.Format(core.TimeLayout),
		})
	}
	return views, nil
}

// MarkRead acknowledges one notification.
func (n *Notifications) MarkRead(ctx context.Context, id int64) error {
	return n.store.MarkNotificationRead(ctx, id)
}
