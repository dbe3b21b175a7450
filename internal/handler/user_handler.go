package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type profileJSON struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	Tenant    tenantJSON `json:"tenant"`
}

// Profile handles GET /user/profile
func (h *Handler) Profile(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	user, tenant, err := h.auth.Profile(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": profileJSON{
			ID:        user.ID,
			Email:     user.Email,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
			Tenant:    tenantDetail(tenant),
		},
	})
}
