package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

type StatementParams struct {
	Kind domain.AccountKind `form:"kind" binding:"required,oneof=RELATION BOX CHANNEL"`
	ID   string             `form:"id" binding:"required"`
	From time.Time          `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time          `form:"to" binding:"required" time_format:"2006-01-02"`
}

type DashboardParams struct {
	From     time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To       time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	Currency string    `form:"currency" binding:"omitempty,currency"`
}

type ExtractDocumentRequest struct {
	DataURI string              `json:"dataURI" binding:"required"`
	Kind    domain.DocumentKind `json:"kind" binding:"required,oneof=TICKET VISA"`
	Store   bool                `json:"store"`
}

type ListNotificationsParams struct {
	UnreadOnly bool `form:"unreadOnly"`
	Limit      int  `form:"limit,default=50"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
