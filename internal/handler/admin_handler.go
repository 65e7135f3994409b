package handler

import (
	"net/http"
	"time"

	"pink-basket/internal/service"
	"pink-basket/pkg/jwtutil"
	"pink-basket/pkg/logger"
	"pink-basket/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// CookieConfig describes the admin session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

type AdminHandler struct {
	passwordHash []byte
	sessions     *jwtutil.SessionUtil
	cookie       CookieConfig
	reports      *service.ReportService
}

// NewAdminHandler hashes the shared admin password once so requests only
// ever compare against the hash.
func NewAdminHandler(password string, sessions *jwtutil.SessionUtil, cookie CookieConfig, reports *service.ReportService) (*AdminHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AdminHandler{passwordHash: hash, sessions: sessions, cookie: cookie, reports: reports}, nil
}

// Login exchanges the admin password for a signed session cookie
func (h *AdminHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)

	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		prometheus.RecordAdminLogin("invalid_request")
		return respondError(c, err, "Invalid request data")
	}

	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil {
		log.Warn("Admin login rejected", zap.String("ip", c.RealIP()))
		prometheus.RecordAdminLogin("rejected")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, expiresAt, err := h.sessions.Generate()
	if err != nil {
		log.Error("Failed to issue admin session", zap.Error(err))
		prometheus.RecordAdminLogin("error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	prometheus.RecordAdminLogin("accepted")
	log.Info("Admin logged in", zap.Time("expires_at", expiresAt))
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token, "expires_at": expiresAt})
}

// Logout clears the session cookie
func (h *AdminHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Sales returns the revenue dashboard aggregates
func (h *AdminHandler) Sales(c echo.Context) error {
	report, err := h.reports.Sales(c.Request().Context())
	if err != nil {
		return respondError(c, err, "Failed to build sales report")
	}
	return c.JSON(http.StatusOK, report)
}

// Inventory returns stock levels, optionally filtered with ?q=
func (h *AdminHandler) Inventory(c echo.Context) error {
	report, err := h.reports.Inventory(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return respondError(c, err, "Failed to build inventory report")
	}
	return c.JSON(http.StatusOK, report)
}
