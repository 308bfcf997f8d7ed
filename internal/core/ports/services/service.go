package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	User               UserSvcFacade
	Auth               AuthSvc
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
	APIToken           APITokenSvc

	Relation RelationSvcFacade
	Box      BoxSvcFacade
	Channel  ChannelSvcFacade

	Voucher VoucherSvcFacade
	Audit   AuditSvc

	Booking      BookingSvcFacade
	Visa         VisaSvcFacade
	Subscription SubscriptionSvcFacade
	Segment      SegmentSvcFacade
	Notification NotificationSvc

	Reporting  ReportingService
	Extraction ExtractionSvc
	// Attachments is nil when storage is not configured.
	Attachments AttachmentStore
}
