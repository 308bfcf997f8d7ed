package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BookingHandlerTestSuite struct {
	routerSuite
}

func bookingBody() map[string]any {
	return map[string]any{
		"reference":    "PNR123",
		"clientID":     "client-1",
		"supplierID":   "supplier-1",
		"passengers":   []map[string]any{{"name": "Jane Doe", "passportNumber": "P1234567"}},
		"route":        "CAI-DXB",
		"airline":      "EK",
		"travelDate":   "2025-07-01T00:00:00Z",
		"currencyCode": "USD",
		"costPrice":    "800",
		"salePrice":    "950",
	}
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_AgentAllowed() {
	userID := uuid.NewString()
	voucherID := uuid.NewString()
	created := &domain.Booking{
		BookingID:    uuid.NewString(),
		Reference:    "PNR123",
		ClientID:     "client-1",
		SupplierID:   "supplier-1",
		CurrencyCode: "USD",
		CostPrice:    decimal.NewFromInt(800),
		SalePrice:    decimal.NewFromInt(950),
		Status:       domain.SaleActive,
		VoucherID:    &voucherID,
	}
	suite.mockBookingService.On("CreateBooking",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateBookingRequest) bool {
			return req.ClientID == "client-1" &&
				len(req.Passengers) == 1 &&
				req.SalePrice.Equal(decimal.NewFromInt(950))
		}),
		userID,
	).Return(created, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bookings", bookingBody(), suite.token(userID, domain.RoleAgent))

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var got domain.Booking
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	suite.Equal(created.BookingID, got.BookingID)
	suite.Require().NotNil(got.VoucherID)
	suite.Equal(voucherID, *got.VoucherID)
	suite.mockBookingService.AssertExpectations(suite.T())
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_NoPassengers() {
	body := bookingBody()
	body["passengers"] = []map[string]any{}

	w := suite.do(http.MethodPost, "/api/v1/bookings", body, suite.token(uuid.NewString(), domain.RoleAgent))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockBookingService.AssertNotCalled(suite.T(), "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_NegativeCost() {
	body := bookingBody()
	body["costPrice"] = "-1"

	w := suite.do(http.MethodPost, "/api/v1/bookings", body, suite.token(uuid.NewString(), domain.RoleAgent))

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCreateBooking_SupplierNotFound() {
	userID := uuid.NewString()
	suite.mockBookingService.On("CreateBooking", mock.Anything, mock.Anything, userID).
		Return(nil, fmt.Errorf("supplier supplier-1: %w", apperrors.ErrNotFound)).Once()

	w := suite.do(http.MethodPost, "/api/v1/bookings", bookingBody(), suite.token(userID, domain.RoleAgent))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_WithReason() {
	userID := uuid.NewString()
	suite.mockBookingService.On("CancelBooking", mock.Anything, "b-1", "client changed plans", userID).
		Return(&domain.Booking{BookingID: "b-1", Status: domain.SaleCancelled}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bookings/b-1/cancel",
		map[string]any{"reason": "client changed plans"}, suite.token(userID, domain.RoleAccountant))

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.mockBookingService.AssertExpectations(suite.T())
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_WithoutBody() {
	userID := uuid.NewString()
	suite.mockBookingService.On("CancelBooking", mock.Anything, "b-2", "", userID).
		Return(&domain.Booking{BookingID: "b-2", Status: domain.SaleCancelled}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/bookings/b-2/cancel", nil, suite.token(userID, domain.RoleAccountant))

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_AgentForbidden() {
	w := suite.do(http.MethodPost, "/api/v1/bookings/b-3/cancel", nil, suite.token(uuid.NewString(), domain.RoleAgent))

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *BookingHandlerTestSuite) TestCancelBooking_AlreadyCancelled() {
	userID := uuid.NewString()
	suite.mockBookingService.On("CancelBooking", mock.Anything, "b-4", "", userID).
		Return(nil, fmt.Errorf("%w: booking is already cancelled", apperrors.ErrConflict)).Once()

	w := suite.do(http.MethodPost, "/api/v1/bookings/b-4/cancel", nil, suite.token(userID, domain.RoleAccountant))

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *BookingHandlerTestSuite) TestUpcomingDepartures_Window() {
	suite.mockBookingService.On("UpcomingDepartures", mock.Anything,
		mock.AnythingOfType("time.Time"),
		mock.AnythingOfType("time.Time"),
	).Run(func(args mock.Arguments) {
		from, to := args.Get(1).(time.Time), args.Get(2).(time.Time)
		suite.Equal(3*24*time.Hour, to.Sub(from))
	}).Return([]domain.Booking{}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/bookings/upcoming?days=3", nil, suite.token(uuid.NewString(), domain.RoleAgent))

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *BookingHandlerTestSuite) TestUpcomingDepartures_DaysOutOfRange() {
	for _, days := range []string{"-1", "61", "soon"} {
		w := suite.do(http.MethodGet, "/api/v1/bookings/upcoming?days="+days, nil, suite.token(uuid.NewString(), domain.RoleAgent))
		suite.Equal(http.StatusBadRequest, w.Code, "days=%s", days)
	}
}

func (suite *BookingHandlerTestSuite) TestDownloadDocument_StorageDisabled() {
	suite.mockBookingService.On("GetBooking", mock.Anything, "b-5").
		Return(&domain.Booking{BookingID: "b-5", AttachmentKey: "bookings/b-5/ticket.pdf"}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/bookings/b-5/document", nil, suite.token(uuid.NewString(), domain.RoleAgent))

	suite.Equal(http.StatusServiceUnavailable, w.Code)
}

func TestBookingHandler(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}
