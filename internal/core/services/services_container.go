package services

import (
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
)

// Integrations are the optional outbound adapters. Any field may be nil.
type Integrations struct {
	Attachments portssvc.AttachmentStore
	Extractor   portssvc.DocumentExtractor
	Idempotency portsrepo.IdempotencyStore
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, integrations Integrations) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{
		Attachments: integrations.Attachments,
	}

	// Identity and sessions
	container.User = NewUserService(repos.UserRepo, repos.APITokenRepo, repos.AuditRepo)
	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)
	container.Auth = NewAuthService(container.User, container.TokenService, container.GoogleOAuthHandler)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	// Accounts and the journal
	container.Relation = NewRelationService(repos.TxManager, repos.RelationRepo, repos.VoucherRepo, repos.AuditRepo)
	container.Box = NewBoxService(repos.TxManager, repos.BoxRepo, repos.VoucherRepo, repos.AuditRepo)
	container.Channel = NewChannelService(repos.TxManager, repos.ChannelRepo, repos.VoucherRepo, repos.AuditRepo)

	var voucherOpts []VoucherServiceOption
	if integrations.Idempotency != nil {
		voucherOpts = append(voucherOpts, WithIdempotencyStore(integrations.Idempotency))
	}
	container.Voucher = NewVoucherService(
		repos.TxManager,
		repos.VoucherRepo,
		repos.AuditRepo,
		repos.RelationRepo,
		repos.BoxRepo,
		repos.ChannelRepo,
		voucherOpts...,
	)
	container.Audit = NewAuditService(repos.AuditRepo)

	// Sales post their vouchers through the voucher service
	var salesOpts []SalesServiceOption
	if integrations.Attachments != nil {
		salesOpts = append(salesOpts, WithAttachmentStore(integrations.Attachments))
	}
	container.Booking = NewBookingService(repos.TxManager, repos.BookingRepo, repos.RelationRepo, repos.AuditRepo, container.Voucher, salesOpts...)
	container.Visa = NewVisaService(repos.TxManager, repos.VisaRepo, repos.RelationRepo, repos.AuditRepo, container.Voucher, salesOpts...)
	container.Subscription = NewSubscriptionService(repos.TxManager, repos.SubscriptionRepo, repos.RelationRepo, repos.AuditRepo, container.Voucher, nil)
	container.Segment = NewSegmentService(repos.TxManager, repos.SegmentRepo, repos.ReportingRepo, repos.AuditRepo, container.Voucher)
	container.Notification = NewNotificationService(repos.NotificationRepo)

	container.Reporting = NewReportingService(ReportingDeps{
		RelationRepo:    repos.RelationRepo,
		BoxRepo:         repos.BoxRepo,
		ChannelRepo:     repos.ChannelRepo,
		Ledger:          repos.VoucherRepo,
		ReportingRepo:   repos.ReportingRepo,
		SubRepo:         repos.SubscriptionRepo,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	container.Extraction = NewExtractionService(integrations.Extractor, integrations.Attachments)

	return container
}
