package repositories

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	TxManager        TransactionManager
	UserRepo         UserRepositoryFacade
	APITokenRepo     APITokenRepository
	RelationRepo     RelationRepository
	BoxRepo          BoxRepository
	ChannelRepo      ChannelRepository
	VoucherRepo      VoucherRepositoryFacade
	AuditRepo        AuditRepository
	BookingRepo      BookingRepository
	VisaRepo         VisaRepository
	SubscriptionRepo SubscriptionRepository
	SegmentRepo      SegmentRepository
	NotificationRepo NotificationRepository
	ReportingRepo    ReportingRepository
}
