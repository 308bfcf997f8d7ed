package dto

import (
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

type CreateRelationRequest struct {
	Code           *string             `json:"code" binding:"omitempty,max=50"`
	Name           string              `json:"name" binding:"required,max=200"`
	Kind           domain.RelationKind `json:"kind" binding:"required,oneof=CLIENT SUPPLIER BOTH"`
	Phone          string              `json:"phone" binding:"max=50"`
	Email          string              `json:"email" binding:"omitempty,email"`
	Address        string              `json:"address"`
	CurrencyCode   string              `json:"currencyCode" binding:"required,currency"`
	OpeningBalance decimal.Decimal     `json:"openingBalance"`
	Notes          string              `json:"notes"`
}

type UpdateRelationRequest struct {
	Code     *string              `json:"code" binding:"omitempty,max=50"`
	Name     *string              `json:"name" binding:"omitempty,max=200"`
	Kind     *domain.RelationKind `json:"kind" binding:"omitempty,oneof=CLIENT SUPPLIER BOTH"`
	Phone    *string              `json:"phone" binding:"omitempty,max=50"`
	Email    *string              `json:"email" binding:"omitempty,email"`
	Address  *string              `json:"address"`
	Notes    *string              `json:"notes"`
	IsActive *bool                `json:"isActive"`
}

type ListRelationsParams struct {
	Kind            string `form:"kind" binding:"omitempty,oneof=CLIENT SUPPLIER BOTH"`
	Search          string `form:"search"`
	IncludeInactive bool   `form:"includeInactive"`
	Limit           int    `form:"limit,default=50"`
	Offset          int    `form:"offset,default=0"`
}

type ListRelationsResponse struct {
	Relations []domain.Relation `json:"relations"`
	Total     int               `json:"total"`
}

// RelationWithBalance is a relation and its derived balance, used by exports.
type RelationWithBalance struct {
	domain.Relation
	Balance decimal.Decimal `json:"balance"`
}

// ImportRowError describes why a spreadsheet row was skipped.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a relations import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Errors   []ImportRowError `json:"errors"`
}

type CreateBoxRequest struct {
	Name           string          `json:"name" binding:"required,max=200"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,currency"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

type UpdateBoxRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=200"`
	IsActive *bool   `json:"isActive"`
}

type CreateChannelRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
}

type UpdateChannelRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}
