package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/handlers"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

const (
	testSecret = "test-secret-key-that-is-long-enough"
	testIssuer = "backoffice-test"
)

// routerSuite registers the real routes on top of mocked services.
type routerSuite struct {
	suite.Suite
	router   *gin.Engine
	services *portssvc.ServiceContainer

	mockVoucherService      *MockVoucherService
	mockBookingService      *MockBookingService
	mockSubscriptionService *MockSubscriptionService
	mockAPITokenService     *MockAPITokenService
}

func (s *routerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.mockVoucherService = new(MockVoucherService)
	s.mockBookingService = new(MockBookingService)
	s.mockSubscriptionService = new(MockSubscriptionService)
	s.mockAPITokenService = new(MockAPITokenService)
	s.services = &portssvc.ServiceContainer{
		Voucher:      s.mockVoucherService,
		Booking:      s.mockBookingService,
		Subscription: s.mockSubscriptionService,
		APIToken:     s.mockAPITokenService,
	}

	cfg := &config.Config{
		JWTSecret:              testSecret,
		JWTIssuer:              testIssuer,
		RefreshTokenCookieName: "bo_session",
		RefreshTokenCookiePath: "/api/v1/auth",
	}
	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, s.services, handlers.RouterDeps{}))
}

// token signs an access token for userID with the given role.
func (s *routerSuite) token(userID string, role domain.Role) string {
	tok, err := utils.GenerateJWT(userID, string(role), testSecret, time.Hour, testIssuer)
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return tok
}

// do serves one request. body is JSON-encoded unless it is nil or already a string.
func (s *routerSuite) do(method, url string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, buf)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *routerSuite) decodeError(w *httptest.ResponseRecorder) string {
	var resp map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}
