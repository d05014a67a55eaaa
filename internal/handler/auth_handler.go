package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"foodguard/internal/errors"
	"foodguard/internal/session"
)

// HeaderDeviceID carries the client device identity that namespaces its
// persisted session.
const HeaderDeviceID = "X-Device-ID"

// AuthHandler handles session lifecycle endpoints.
type AuthHandler struct {
	sessions *session.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(sessions *session.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse represents the session state returned to the client.
type SessionResponse struct {
	Session session.Session `json:"session"`
}

func deviceID(c echo.Context) (string, error) {
	id := c.Request().Header.Get(HeaderDeviceID)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "missing " + HeaderDeviceID + " header",
			Code:  "MISSING_DEVICE_ID",
		})
	}
	return id, nil
}

func httpError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}

// Login godoc
// @Summary Authenticate a device session
// @Tags auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identity"
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	id, err := deviceID(c)
	if err != nil {
		return err
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	store := h.sessions.Get(ctx, id)
	sess, err := store.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, SessionResponse{Session: sess})
}

// Session godoc
// @Summary Current session state for a device
// @Description Restores the persisted session on first call; the client
// @Description shell redirects to login when the result is unauthenticated.
// @Tags auth
// @Produce json
// @Param X-Device-ID header string true "Device identity"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	id, err := deviceID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	store := h.sessions.Get(ctx, id)
	return c.JSON(http.StatusOK, SessionResponse{Session: store.Current()})
}

// Logout godoc
// @Summary End the device session
// @Tags auth
// @Produce json
// @Param X-Device-ID header string true "Device identity"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/logout [post]
// @Security BearerAuth
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := deviceID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	store := h.sessions.Get(ctx, id)
	store.Logout(ctx)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Refresh godoc
// @Summary Exchange the session token for a fresh one
// @Tags auth
// @Produce json
// @Param X-Device-ID header string true "Device identity"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
// @Security BearerAuth
func (h *AuthHandler) Refresh(c echo.Context) error {
	id, err := deviceID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	store := h.sessions.Get(ctx, id)
	if err := store.RefreshToken(ctx); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token": store.Token(),
	})
}
