//go:build integration

package pgsql

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/pkg/database"
)

type RepositoryIntegrationSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	repos     portsrepo.RepositoryProvider
	now       time.Time
	userID    string
}

func TestRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func migrationsURL() string {
	_, file, _, _ := runtime.Caller(0)
	return "file://" + filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "migrations")
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.Require().NoError(database.RunMigrations(slog.Default(), dsn, migrationsURL(), database.Up))

	pool, err := database.NewPgxPool(ctx, dsn, true)
	s.Require().NoError(err)
	s.T().Cleanup(pool.Close)

	s.repos = NewRepositoryProvider(pool)
	s.now = time.Now().UTC().Truncate(time.Microsecond)
	s.userID = uuid.NewString()
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepositoryIntegrationSuite) newRelation(name string, kind domain.RelationKind, opening string) domain.Relation {
	return s.newRelationIn("USD", name, kind, opening)
}

func (s *RepositoryIntegrationSuite) newRelationIn(currency, name string, kind domain.RelationKind, opening string) domain.Relation {
	rel := domain.Relation{
		RelationID:     uuid.NewString(),
		Name:           name,
		Kind:           kind,
		CurrencyCode:   currency,
		OpeningBalance: decimal.RequireFromString(opening),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.RelationRepo.SaveRelation(context.Background(), rel))
	return rel
}

func (s *RepositoryIntegrationSuite) newBox(name string) domain.Box {
	box := domain.Box{
		BoxID:          uuid.NewString(),
		Name:           name,
		CurrencyCode:   "USD",
		OpeningBalance: decimal.Zero,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.BoxRepo.SaveBox(context.Background(), box))
	return box
}

func (s *RepositoryIntegrationSuite) receipt(rel domain.Relation, box domain.Box, amount string, date time.Time) domain.Voucher {
	ctx := context.Background()
	seq, err := s.repos.VoucherRepo.NextVoucherNumber(ctx, domain.VoucherReceipt)
	s.Require().NoError(err)

	id := uuid.NewString()
	amt := decimal.RequireFromString(amount)
	v := domain.Voucher{
		VoucherID:    id,
		Number:       domain.FormatVoucherNumber(domain.VoucherReceipt, seq),
		Type:         domain.VoucherReceipt,
		Date:         domain.DateOnly(date),
		CurrencyCode: "USD",
		Amount:       amt,
		Status:       domain.VoucherPosted,
		RelationID:   &rel.RelationID,
		RelationName: rel.Name,
		Lines: []domain.VoucherLine{
			{LineID: uuid.NewString(), VoucherID: id, LineNo: 1, AccountKind: domain.AccountBox, AccountID: box.BoxID, Debit: amt, Credit: decimal.Zero},
			{LineID: uuid.NewString(), VoucherID: id, LineNo: 2, AccountKind: domain.AccountRelation, AccountID: rel.RelationID, Debit: decimal.Zero, Credit: amt},
		},
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.VoucherRepo.SaveVoucher(ctx, v))
	return v
}

func (s *RepositoryIntegrationSuite) TestVoucherNumbersIncreasePerType() {
	ctx := context.Background()
	first, err := s.repos.VoucherRepo.NextVoucherNumber(ctx, domain.VoucherTransfer)
	s.Require().NoError(err)
	second, err := s.repos.VoucherRepo.NextVoucherNumber(ctx, domain.VoucherTransfer)
	s.Require().NoError(err)
	s.Equal(first+1, second)
}

func (s *RepositoryIntegrationSuite) TestVoucherRoundTripAndMovements() {
	ctx := context.Background()
	rel := s.newRelation("Acme Travel", domain.RelationClient, "100")
	box := s.newBox("Main cash")
	v := s.receipt(rel, box, "40", s.now)

	found, err := s.repos.VoucherRepo.FindVoucherByID(ctx, v.VoucherID)
	s.Require().NoError(err)
	s.Equal(v.Number, found.Number)
	s.Len(found.Lines, 2)
	s.True(found.Amount.Equal(decimal.NewFromInt(40)))

	moves, err := s.repos.VoucherRepo.SumMovements(ctx, domain.AccountRelation, []string{rel.RelationID}, nil)
	s.Require().NoError(err)
	s.True(moves[rel.RelationID].Credit.Equal(decimal.NewFromInt(40)))

	referenced, err := s.repos.VoucherRepo.IsAccountReferenced(ctx, domain.AccountBox, box.BoxID)
	s.Require().NoError(err)
	s.True(referenced)

	s.Require().NoError(s.repos.VoucherRepo.UpdateVoucherStatus(ctx, v.VoucherID, domain.VoucherVoided, "typo", s.userID, s.now))
	moves, err = s.repos.VoucherRepo.SumMovements(ctx, domain.AccountRelation, []string{rel.RelationID}, nil)
	s.Require().NoError(err)
	s.True(moves[rel.RelationID].Credit.IsZero())
}

func (s *RepositoryIntegrationSuite) TestArchiveVoucherRemovesItFromTheJournal() {
	ctx := context.Background()
	v := s.receipt(s.newRelation("Archive Co", domain.RelationClient, "0"), s.newBox("Archive box"), "15", s.now)

	err := s.repos.VoucherRepo.ArchiveVoucher(ctx, domain.DeletedVoucher{
		Voucher: v, Reason: "duplicate", DeletedAt: s.now, DeletedBy: s.userID,
	})
	s.Require().NoError(err)

	_, err = s.repos.VoucherRepo.FindVoucherByID(ctx, v.VoucherID)
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *RepositoryIntegrationSuite) TestRunInTxRollsBackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")
	var relationID string

	err := s.repos.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		rel := domain.Relation{
			RelationID: uuid.NewString(), Name: "Rolled back", Kind: domain.RelationSupplier,
			CurrencyCode: "USD", IsActive: true, AuditFields: domain.NewAuditFields(s.userID, s.now),
		}
		relationID = rel.RelationID
		if err := s.repos.RelationRepo.SaveRelation(txCtx, rel); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.repos.RelationRepo.FindRelationByID(ctx, relationID)
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *RepositoryIntegrationSuite) TestDuplicateEmailIsReported() {
	ctx := context.Background()
	user := domain.User{
		UserID: uuid.NewString(), Email: "dup@example.com", Name: "Dup", Role: domain.RoleAgent,
		AuthProvider: domain.AuthProviderLocal, PasswordHash: "hash",
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	s.Require().NoError(s.repos.UserRepo.SaveUser(ctx, user))

	user.UserID = uuid.NewString()
	user.Email = "DUP@example.com"
	err := s.repos.UserRepo.SaveUser(ctx, user)
	s.True(errors.Is(err, apperrors.ErrDuplicate))
}

func (s *RepositoryIntegrationSuite) TestNotificationsAreDeduplicated() {
	ctx := context.Background()
	n := domain.Notification{
		NotificationID: uuid.NewString(), Kind: domain.NotificationTravelUpcoming,
		Title: "Departure soon", EntityType: domain.EntityBooking, EntityID: uuid.NewString(), CreatedAt: s.now,
	}
	created, err := s.repos.NotificationRepo.CreateNotification(ctx, n)
	s.Require().NoError(err)
	s.True(created)

	n.NotificationID = uuid.NewString()
	created, err = s.repos.NotificationRepo.CreateNotification(ctx, n)
	s.Require().NoError(err)
	s.False(created)

	list, err := s.repos.NotificationRepo.ListNotifications(ctx, s.userID, true, 50)
	s.Require().NoError(err)
	s.NotEmpty(list)

	s.Require().NoError(s.repos.NotificationRepo.MarkRead(ctx, list[0].NotificationID, s.userID))
	// marking twice is fine
	s.Require().NoError(s.repos.NotificationRepo.MarkRead(ctx, list[0].NotificationID, s.userID))
}

func (s *RepositoryIntegrationSuite) TestBroadcastReadStateIsPerUser() {
	ctx := context.Background()
	alice, bob := uuid.NewString(), uuid.NewString()
	broadcast := domain.Notification{
		NotificationID: uuid.NewString(), Kind: domain.NotificationInstallmentOverdue,
		Title: "Installment overdue", EntityType: domain.EntityInstallment, EntityID: uuid.NewString(), CreatedAt: s.now,
	}
	_, err := s.repos.NotificationRepo.CreateNotification(ctx, broadcast)
	s.Require().NoError(err)

	s.Require().NoError(s.repos.NotificationRepo.MarkRead(ctx, broadcast.NotificationID, alice))

	unread := func(userID string) bool {
		list, err := s.repos.NotificationRepo.ListNotifications(ctx, userID, true, 500)
		s.Require().NoError(err)
		for _, n := range list {
			if n.NotificationID == broadcast.NotificationID {
				return true
			}
		}
		return false
	}
	s.False(unread(alice))
	s.True(unread(bob))

	all, err := s.repos.NotificationRepo.ListNotifications(ctx, alice, false, 500)
	s.Require().NoError(err)
	for _, n := range all {
		if n.NotificationID == broadcast.NotificationID {
			s.True(n.IsRead)
		}
	}

	updated, err := s.repos.NotificationRepo.MarkAllRead(ctx, bob)
	s.Require().NoError(err)
	s.Positive(updated)
	s.False(unread(bob))
}

func (s *RepositoryIntegrationSuite) TestMarkReadOfSomeoneElsesNotification() {
	ctx := context.Background()
	owner := uuid.NewString()
	direct := domain.Notification{
		NotificationID: uuid.NewString(), UserID: &owner, Kind: domain.NotificationSystem,
		Title: "Password changed", EntityType: "user", EntityID: owner, CreatedAt: s.now,
	}
	_, err := s.repos.NotificationRepo.CreateNotification(ctx, direct)
	s.Require().NoError(err)

	err = s.repos.NotificationRepo.MarkRead(ctx, direct.NotificationID, uuid.NewString())
	s.True(errors.Is(err, apperrors.ErrNotFound))
}

func (s *RepositoryIntegrationSuite) TestInstallmentCanOnlyBePaidOnce() {
	ctx := context.Background()
	client := s.newRelation("Double pay client", domain.RelationClient, "0")
	subID := uuid.NewString()
	inst := domain.Installment{
		InstallmentID: uuid.NewString(), SubscriptionID: subID, Sequence: 1,
		DueDate: domain.DateOnly(s.now), Amount: decimal.NewFromInt(50), PaidAmount: decimal.Zero,
		Status: domain.InstallmentPending,
	}
	s.Require().NoError(s.repos.SubscriptionRepo.SaveSubscription(ctx, domain.Subscription{
		SubscriptionID: subID, ClientID: client.RelationID, ClientName: client.Name,
		ServiceName: "Visa run", CurrencyCode: "USD",
		TotalAmount: decimal.NewFromInt(50), CostAmount: decimal.Zero, InstallmentCount: 1,
		StartDate: domain.DateOnly(s.now), Status: domain.SubscriptionActive, Partners: []domain.PartnerShare{},
		Installments: []domain.Installment{inst},
		AuditFields:  domain.NewAuditFields(s.userID, s.now),
	}))

	err := s.repos.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		status, err := s.repos.SubscriptionRepo.LockSubscription(txCtx, subID)
		s.Require().NoError(err)
		s.Equal(domain.SubscriptionActive, status)
		return nil
	})
	s.Require().NoError(err)

	paid := inst
	paid.Status = domain.InstallmentPaid
	paid.PaidAmount = inst.Amount
	paid.PaidAt = &s.now
	s.Require().NoError(s.repos.SubscriptionRepo.MarkInstallmentPaid(ctx, paid))

	err = s.repos.SubscriptionRepo.MarkInstallmentPaid(ctx, paid)
	s.True(errors.Is(err, apperrors.ErrConflict))

	open, err := s.repos.SubscriptionRepo.CountOpenInstallments(ctx, subID)
	s.Require().NoError(err)
	s.Zero(open)
}

func (s *RepositoryIntegrationSuite) TestRelationPositionsAreSplitByCurrency() {
	ctx := context.Background()
	s.newRelationIn("CHF", "Zurich client", domain.RelationClient, "70")
	s.newRelationIn("CHF", "Zurich hotel", domain.RelationSupplier, "-20")
	s.newRelationIn("JPY", "Tokyo client", domain.RelationClient, "500")

	receivables, payables, err := s.repos.ReportingRepo.RelationPositions(ctx, "CHF")
	s.Require().NoError(err)
	s.True(receivables.Equal(decimal.NewFromInt(70)), "got %s", receivables)
	s.True(payables.Equal(decimal.NewFromInt(20)), "got %s", payables)
}

func (s *RepositoryIntegrationSuite) TestMarkOverdueFlipsPastDueInstallments() {
	ctx := context.Background()
	client := s.newRelation("Installment client", domain.RelationClient, "0")
	subID := uuid.NewString()
	start := domain.DateOnly(s.now.AddDate(0, -2, 0))

	sub := domain.Subscription{
		SubscriptionID: subID, ClientID: client.RelationID, ClientName: client.Name,
		ServiceName: "Umrah package", CurrencyCode: "USD",
		TotalAmount: decimal.NewFromInt(300), CostAmount: decimal.Zero, InstallmentCount: 3,
		StartDate: start, Status: domain.SubscriptionActive, Partners: []domain.PartnerShare{},
		AuditFields: domain.NewAuditFields(s.userID, s.now),
	}
	for i := 0; i < 3; i++ {
		sub.Installments = append(sub.Installments, domain.Installment{
			InstallmentID: uuid.NewString(), SubscriptionID: subID, Sequence: i + 1,
			DueDate: start.AddDate(0, i, 0), Amount: decimal.NewFromInt(100), PaidAmount: decimal.Zero,
			Status: domain.InstallmentPending,
		})
	}
	s.Require().NoError(s.repos.SubscriptionRepo.SaveSubscription(ctx, sub))

	overdue, err := s.repos.SubscriptionRepo.MarkOverdue(ctx, s.now)
	s.Require().NoError(err)

	var ours int
	for _, inst := range overdue {
		if inst.SubscriptionID == subID {
			ours++
			s.Equal(domain.InstallmentOverdue, inst.Status)
		}
	}
	s.Equal(2, ours)

	found, err := s.repos.SubscriptionRepo.FindSubscriptionByID(ctx, subID)
	s.Require().NoError(err)
	s.Require().Len(found.Installments, 3)
	s.Equal(1, found.Installments[0].Sequence)
	s.Equal(domain.InstallmentPending, found.Installments[2].Status)
}

func (s *RepositoryIntegrationSuite) TestSalesTotalsSkipCancelledBookings() {
	ctx := context.Background()
	client := s.newRelation("Sales client", domain.RelationClient, "0")
	supplier := s.newRelation("Sales airline", domain.RelationSupplier, "0")
	travel := domain.DateOnly(s.now.AddDate(1, 0, 0))

	for _, status := range []domain.SaleStatus{domain.SaleActive, domain.SaleCancelled} {
		s.Require().NoError(s.repos.BookingRepo.SaveBooking(ctx, domain.Booking{
			BookingID: uuid.NewString(), ClientID: client.RelationID, ClientName: client.Name,
			SupplierID: supplier.RelationID, SupplierName: supplier.Name,
			Passengers: []domain.Passenger{{Name: "Jane Roe"}}, TravelDate: travel, CurrencyCode: "EUR",
			CostPrice: decimal.NewFromInt(80), SalePrice: decimal.NewFromInt(100), Status: status,
			AuditFields: domain.NewAuditFields(s.userID, s.now),
		}))
	}

	totals, err := s.repos.ReportingRepo.SalesTotals(ctx, travel, travel, "EUR")
	s.Require().NoError(err)
	s.Equal(1, totals.BookingCount)
	s.True(totals.Sales.Equal(decimal.NewFromInt(100)))
	s.True(totals.Profit().Equal(decimal.NewFromInt(20)))

	departing, err := s.repos.BookingRepo.FindDepartingBetween(ctx, travel, travel)
	s.Require().NoError(err)
	s.Len(departing, 1)
	s.Equal("Jane Roe", departing[0].Passengers[0].Name)
}
