package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

type mockOverdue struct{ mock.Mock }

func (m *mockOverdue) MarkOverdue(ctx context.Context, now time.Time) ([]domain.Installment, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}

type mockDepartures struct{ mock.Mock }

func (m *mockDepartures) UpcomingDepartures(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, n domain.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 10, 6, 30, 0, 0, time.UTC)

func newTestRunner() (*Runner, *mockOverdue, *mockDepartures, *mockNotifier) {
	o, d, n := new(mockOverdue), new(mockDepartures), new(mockNotifier)
	r := NewRunner(o, d, n, nil)
	r.now = func() time.Time { return fixedNow }
	return r, o, d, n
}

func TestMarkOverdueInstallments_NotifiesEachInstallment(t *testing.T) {
	r, overdue, _, notif := newTestRunner()
	ctx := context.Background()

	overdue.On("MarkOverdue", ctx, fixedNow).Return([]domain.Installment{
		{InstallmentID: "i1", Sequence: 1, Amount: decimal.NewFromInt(100), DueDate: fixedNow.AddDate(0, 0, -3)},
		{InstallmentID: "i2", Sequence: 2, Amount: decimal.NewFromInt(100), DueDate: fixedNow.AddDate(0, 0, -1)},
	}, nil)
	notif.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.EntityID == "i1" && n.Kind == domain.NotificationInstallmentOverdue && n.EntityType == domain.EntityInstallment
	})).Return(true, nil).Once()
	notif.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.EntityID == "i2"
	})).Return(false, nil).Once()

	created, err := r.MarkOverdueInstallments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	notif.AssertExpectations(t)
}

func TestMarkOverdueInstallments_RepositoryError(t *testing.T) {
	r, overdue, _, notif := newTestRunner()
	ctx := context.Background()
	overdue.On("MarkOverdue", ctx, fixedNow).Return(nil, errors.New("db down"))

	_, err := r.MarkOverdueInstallments(ctx)
	assert.Error(t, err)
	notif.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestRemindUpcomingTravel_UsesTwoDayWindow(t *testing.T) {
	r, _, departures, notif := newTestRunner()
	ctx := context.Background()
	today := domain.DateOnly(fixedNow)

	departures.On("UpcomingDepartures", ctx, today, today.Add(ReminderWindow)).Return([]domain.Booking{{
		BookingID:  "b1",
		Reference:  "PNR42",
		ClientName: "Acme",
		Route:      "DXB-IST",
		TravelDate: today.AddDate(0, 0, 1),
		Passengers: []domain.Passenger{{Name: "Jane Roe"}, {Name: "John Roe"}},
	}}, nil)
	notif.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotificationTravelUpcoming &&
			n.EntityID == "b1" &&
			n.Body == "Jane Roe, John Roe travel on 2026-03-11 (DXB-IST), ref PNR42."
	})).Return(true, nil)

	created, err := r.RemindUpcomingTravel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestRunAll_ContinuesAfterFailure(t *testing.T) {
	r, overdue, departures, _ := newTestRunner()
	ctx := context.Background()
	overdue.On("MarkOverdue", ctx, fixedNow).Return(nil, errors.New("boom"))
	departures.On("UpcomingDepartures", ctx, mock.Anything, mock.Anything).Return([]domain.Booking{}, nil)

	err := r.RunAll(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), jobOverdue)
	departures.AssertExpectations(t)
}

func TestNewScheduler_Spec(t *testing.T) {
	r, _, _, _ := newTestRunner()

	s, err := NewScheduler(r, "@daily", nil)
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	_, err = NewScheduler(r, "not a schedule", nil)
	assert.Error(t, err)
}
