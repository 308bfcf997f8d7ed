package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/SscSPs/travel_backoffice/internal/platform/config"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

const oauthStateCookie = "oauth_state"

// authHandler handles sessions: password and Google logins, refresh and logout.
type authHandler struct {
	authService  portssvc.AuthSvc
	userService  portssvc.UserSvcFacade
	googleOAuth  portssvc.GoogleOAuthHandlerSvcFacade
	analytics    *analytics.Client
	cookieName   string
	cookiePath   string
	secureCookie bool
}

func newAuthHandler(cfg *config.Config, services *portssvc.ServiceContainer, client *analytics.Client) *authHandler {
	return &authHandler{
		authService:  services.Auth,
		userService:  services.User,
		googleOAuth:  services.GoogleOAuthHandler,
		analytics:    client,
		cookieName:   cfg.RefreshTokenCookieName,
		cookiePath:   cfg.RefreshTokenCookiePath,
		secureCookie: cfg.IsProduction,
	}
}

// ExchangeCodeRequest carries the authorization code Google redirected the front end with.
type ExchangeCodeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state"`
}

// registerAuthRoutes sets up the public authentication routes. loginLimiter may be nil.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer, client *analytics.Client, loginLimiter *limiter.Limiter) {
	h := newAuthHandler(cfg, services, client)

	auth := r.Group("/api/v1/auth")
	login := []gin.HandlerFunc{}
	if loginLimiter != nil {
		login = append(login, middleware.GinMiddlewarize(loginLimiter))
	}
	{
		auth.POST("/register", middleware.OptionalAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer), h.register)
		auth.POST("/login", append(login, h.login)...)
		auth.POST("/google", append(login, h.loginWithGoogle)...)
		auth.GET("/google/login", h.googleLogin)
		auth.POST("/google/exchange-code", append(login, h.exchangeCodeGoogle)...)
		auth.POST("/refresh", h.refresh)
		auth.POST("/logout", middleware.OptionalAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer), h.logout)
	}
}

// register godoc
// @Summary Register a staff account
// @Description The first account may register without authentication and becomes ADMIN. Afterwards only admins may register staff.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	requestingUserID, _ := middleware.GetUserIDFromContext(c)

	user, err := h.userService.RegisterUser(c.Request.Context(), req, requestingUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to register user")
		return
	}
	logger.Info("User registered", slog.String("new_user_id", user.UserID), slog.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

// login godoc
// @Summary User login
// @Description Authenticates with email and password. Returns an access token and sets the refresh cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Login failed", slog.String("error", err.Error()))
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		respondError(c, logger, err, "Failed to log in")
		return
	}
	h.startSession(c, session, "password")
}

// loginWithGoogle godoc
// @Summary Sign in with a Google ID token
// @Description Validates an ID token obtained by the front end. Unknown emails get an AGENT account.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginRequest true "Google ID token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google [post]
func (h *authHandler) loginWithGoogle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	session, err := h.authService.LoginWithGoogle(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, logger, err, "Failed to sign in with Google")
		return
	}
	h.startSession(c, session, "google")
}

// googleLogin godoc
// @Summary Start the Google redirect flow
// @Description Redirects to Google's consent screen. The state is kept in a short lived cookie.
// @Tags auth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *authHandler) googleLogin(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	state, err := utils.GenerateSecureRandomString(24)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start Google sign-in"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int((10 * time.Minute).Seconds()), "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.googleOAuth.GetGoogleLoginURL(c.Request.Context(), state))
}

// exchangeCodeGoogle godoc
// @Summary Exchange a Google authorization code for a session
// @Description Completes the redirect flow started by /auth/google/login.
// @Tags auth
// @Accept json
// @Produce json
// @Param code body ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code or state"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *authHandler) exchangeCodeGoogle(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	if req.State != "" {
		expected, err := c.Cookie(oauthStateCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(expected), []byte(req.State)) != 1 {
			logger.Warn("OAuth state mismatch")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid OAuth state"})
			return
		}
		c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)
	}

	session, err := h.authService.ExchangeGoogleCode(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, logger, err, "Failed to exchange authorization code")
		return
	}
	h.startSession(c, session, "google")
}

// refresh godoc
// @Summary Refresh the access token
// @Description Uses the refresh cookie to issue a new access token and rotates the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *authHandler) refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, raw, ok := h.readRefreshCookie(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Refresh token missing"})
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), userID, raw)
	if err != nil {
		h.clearRefreshCookie(c)
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.ErrUnauthorized
		}
		respondError(c, logger, err, "Failed to refresh session")
		return
	}
	h.setRefreshCookie(c, session)
	c.JSON(http.StatusOK, loginResponse(session))
}

// logout godoc
// @Summary Log out
// @Description Forgets the refresh token and clears the cookie.
// @Tags auth
// @Success 204
// @Failure 500 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		userID, _, ok = h.readRefreshCookie(c)
	}
	h.clearRefreshCookie(c)
	if ok {
		if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
			respondError(c, logger, err, "Failed to log out")
			return
		}
		logger.Info("User logged out", slog.String("user_id", userID))
	}
	c.Status(http.StatusNoContent)
}

func (h *authHandler) startSession(c *gin.Context, session *dto.Session, method string) {
	h.setRefreshCookie(c, session)
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User logged in",
		slog.String("user_id", session.User.UserID), slog.String("method", method))
	if h.analytics.IsInitialized() {
		h.analytics.Enqueue(session.User.UserID, "user_logged_in", map[string]any{"method": method})
	}
	c.JSON(http.StatusOK, loginResponse(session))
}

func loginResponse(session *dto.Session) dto.LoginResponse {
	return dto.LoginResponse{
		Token:     session.AccessToken,
		ExpiresAt: session.AccessExpiresAt,
		User:      dto.ToUserResponse(session.User),
	}
}

// The refresh cookie holds "<userID>:<token>" so a refresh can find the stored hash.
func (h *authHandler) setRefreshCookie(c *gin.Context, session *dto.Session) {
	maxAge := int(time.Until(session.RefreshExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, session.User.UserID+":"+session.RefreshToken, maxAge, h.cookiePath, "", h.secureCookie, true)
}

func (h *authHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, h.cookiePath, "", h.secureCookie, true)
}

func (h *authHandler) readRefreshCookie(c *gin.Context) (userID, token string, ok bool) {
	value, err := c.Cookie(h.cookieName)
	if err != nil || value == "" {
		return "", "", false
	}
	userID, token, ok = strings.Cut(value, ":")
	if !ok || userID == "" || token == "" {
		return "", "", false
	}
	return userID, token, true
}
