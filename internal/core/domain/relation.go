package domain

import "github.com/shopspring/decimal"

// RelationKind says whether a business partner buys from us, sells to us, or both.
type RelationKind string

const (
	RelationClient   RelationKind = "CLIENT"
	RelationSupplier RelationKind = "SUPPLIER"
	RelationBoth     RelationKind = "BOTH"
)

// IsValid reports whether k is a known relation kind.
func (k RelationKind) IsValid() bool {
	switch k {
	case RelationClient, RelationSupplier, RelationBoth:
		return true
	}
	return false
}

// Relation is a client and/or supplier business partner.
type Relation struct {
	RelationID     string          `json:"relationID"`
	Code           *string         `json:"code,omitempty"`
	Name           string          `json:"name"`
	Kind           RelationKind    `json:"kind"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Address        string          `json:"address"`
	CurrencyCode   string          `json:"currencyCode"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Notes          string          `json:"notes"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// IsClient reports whether the relation can be billed.
func (r Relation) IsClient() bool {
	return r.Kind == RelationClient || r.Kind == RelationBoth
}

// IsSupplier reports whether the relation can be paid.
func (r Relation) IsSupplier() bool {
	return r.Kind == RelationSupplier || r.Kind == RelationBoth
}

// RelationFilter narrows relation listings.
type RelationFilter struct {
	Kind            *RelationKind
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Box is a cash register or bank account the agency holds money in.
type Box struct {
	BoxID          string          `json:"boxID"`
	Name           string          `json:"name"`
	CurrencyCode   string          `json:"currencyCode"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// DistributionChannel is a configured sub-account a receipt's funds may be split into.
type DistributionChannel struct {
	ChannelID   string `json:"channelID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}
