package repositories

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// RelationRepository persists clients and suppliers.
type RelationRepository interface {
	SaveRelation(ctx context.Context, relation domain.Relation) error
	UpdateRelation(ctx context.Context, relation domain.Relation) error
	FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error)
	// ListRelations returns one page of relations and the total number matching the filter.
	ListRelations(ctx context.Context, filter domain.RelationFilter) ([]domain.Relation, int, error)
	DeleteRelation(ctx context.Context, relationID string) error
}

// BoxRepository persists cash boxes.
type BoxRepository interface {
	SaveBox(ctx context.Context, box domain.Box) error
	UpdateBox(ctx context.Context, box domain.Box) error
	FindBoxByID(ctx context.Context, boxID string) (*domain.Box, error)
	ListBoxes(ctx context.Context, includeInactive bool) ([]domain.Box, error)
	DeleteBox(ctx context.Context, boxID string) error
}

// ChannelRepository persists distribution channels.
type ChannelRepository interface {
	SaveChannel(ctx context.Context, channel domain.DistributionChannel) error
	UpdateChannel(ctx context.Context, channel domain.DistributionChannel) error
	FindChannelByID(ctx context.Context, channelID string) (*domain.DistributionChannel, error)
	ListChannels(ctx context.Context, includeInactive bool) ([]domain.DistributionChannel, error)
	DeleteChannel(ctx context.Context, channelID string) error
}
