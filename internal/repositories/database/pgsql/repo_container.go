package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	relationRepo := newPgxRelationRepository(dbPool)
	salesRepo := newPgxSalesRepository(dbPool)

	return portsrepo.RepositoryProvider{
		TxManager:        NewTxManager(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		APITokenRepo:     newPgxAPITokenRepository(dbPool),
		RelationRepo:     relationRepo,
		BoxRepo:          relationRepo,
		ChannelRepo:      relationRepo,
		VoucherRepo:      newPgxVoucherRepository(dbPool),
		AuditRepo:        newPgxAuditRepository(dbPool),
		BookingRepo:      salesRepo,
		VisaRepo:         salesRepo,
		SubscriptionRepo: salesRepo,
		SegmentRepo:      salesRepo,
		NotificationRepo: newPgxNotificationRepository(dbPool),
		ReportingRepo:    newReportingRepository(dbPool),
	}
}
