package domain

import "time"

type NotificationKind string

const (
	NotificationInstallmentOverdue NotificationKind = "INSTALLMENT_OVERDUE"
	NotificationTravelUpcoming     NotificationKind = "TRAVEL_UPCOMING"
	NotificationSystem             NotificationKind = "SYSTEM"
)

// Notification is an in-app message. A nil UserID means every user sees it.
type Notification struct {
	NotificationID string           `json:"notificationID"`
	UserID         *string          `json:"userID,omitempty"`
	Kind           NotificationKind `json:"kind"`
	Title          string           `json:"title"`
	Body           string           `json:"body"`
	EntityType     string           `json:"entityType"`
	EntityID       string           `json:"entityID"`
	IsRead         bool             `json:"isRead"`
	CreatedAt      time.Time        `json:"createdAt"`
}
