package handler

import (
	"net/http"

	"notes-service/internal/model"
	"notes-service/internal/service"
	"notes-service/pkg/errs"

	"github.com/labstack/echo/v4"
)

type inviteRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type invitedUserJSON struct {
	ID     string     `json:"id"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
	Tenant tenantJSON `json:"tenant"`
}

// Upgrade handles POST /tenants/:slug/upgrade
func (h *Handler) Upgrade(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	tenant, err := h.admin.Upgrade(c.Request().Context(), id, c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully upgraded to Pro plan",
		"tenant":  tenantDetail(tenant),
	})
}

// Downgrade handles POST /tenants/:slug/downgrade
func (h *Handler) Downgrade(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	tenant, err := h.admin.Downgrade(c.Request().Context(), id, c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Successfully downgraded to Free plan",
		"tenant":  tenantDetail(tenant),
	})
}

// Invite handles POST /tenants/:slug/invite
func (h *Handler) Invite(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, errs.Invalid("body", "Invalid request body"))
	}

	user, tenant, err := h.admin.Invite(c.Request().Context(), id, c.Param("slug"), service.InviteInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User invited successfully",
		"user": invitedUserJSON{
			ID:     user.ID,
			Email:  user.Email,
			Role:   string(user.Role),
			Tenant: tenantSummary(tenant),
		},
	})
}
