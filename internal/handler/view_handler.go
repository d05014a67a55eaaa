package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"foodguard/internal/auth"
	"foodguard/internal/errors"
	"foodguard/internal/model"
	"foodguard/internal/view"
)

// ViewHandler resolves requested screens against the caller's role and
// subscription.
type ViewHandler struct {
	tokens *auth.TokenService
}

// NewViewHandler creates a new view handler.
func NewViewHandler(tokens *auth.TokenService) *ViewHandler {
	return &ViewHandler{tokens: tokens}
}

// ResolveResponse pairs the requested screen with the one actually shown.
type ResolveResponse struct {
	Requested view.View `json:"requested"`
	Resolved  view.View `json:"resolved"`
}

// Resolve godoc
// @Summary Resolve a requested screen for the authenticated user
// @Tags views
// @Produce json
// @Param requested query string false "Requested view identifier (defaults to dashboard)"
// @Success 200 {object} ResolveResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /views/resolve [get]
// @Security BearerAuth
func (h *ViewHandler) Resolve(c echo.Context) error {
	// The JWT middleware has already gated validity; verify again here to
	// get the typed session claims.
	raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	claims, err := h.tokens.Verify(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: errors.ErrInvalidToken.Error(),
			Code:  "INVALID_TOKEN",
		})
	}

	user := &model.User{
		Email:            claims.Email,
		Role:             claims.Role,
		SubscriptionType: claims.SubscriptionType,
	}
	if id, err := uuid.Parse(claims.UserID); err == nil {
		user.ID = id
	}

	requested := view.View(c.QueryParam("requested"))
	if requested == "" {
		requested = view.Default
	}

	return c.JSON(http.StatusOK, ResolveResponse{
		Requested: requested,
		Resolved:  view.Resolve(requested, user),
	})
}
