package domain

import (
	"encoding/json"
	"time"
)

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// NewAuditFields stamps creation and update fields with the same user and time.
func NewAuditFields(userID string, now time.Time) AuditFields {
	return AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

// Touch records an update by userID at now.
func (a *AuditFields) Touch(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}

// AuditAction names what happened to an entity.
type AuditAction string

const (
	AuditCreate   AuditAction = "CREATE"
	AuditUpdate   AuditAction = "UPDATE"
	AuditDelete   AuditAction = "DELETE"
	AuditVoid     AuditAction = "VOID"
	AuditCancel   AuditAction = "CANCEL"
	AuditFinalize AuditAction = "FINALIZE"
	AuditPay      AuditAction = "PAY"
)

// AuditLog is an append-only record of a write performed by a user.
type AuditLog struct {
	AuditID    string          `json:"auditID"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityID"`
	Action     AuditAction     `json:"action"`
	UserID     string          `json:"userID"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Entity names used in audit logs, voucher sources and notifications.
const (
	EntityUser         = "user"
	EntityRelation     = "relation"
	EntityBox          = "box"
	EntityChannel      = "channel"
	EntityVoucher      = "voucher"
	EntityBooking      = "booking"
	EntityVisa         = "visa"
	EntitySubscription = "subscription"
	EntityInstallment  = "installment"
	EntitySegment      = "segment"
)
