package handler

import (
	"net/http"

	"notes-service/pkg/errs"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUserJSON struct {
	ID     string     `json:"id"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
	Tenant tenantJSON `json:"tenant"`
}

// Login handles POST /auth
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordLogin("invalid_request")
		return respondError(c, errs.Invalid("body", "Invalid request body"))
	}

	session, err := h.auth.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		prometheus.RecordLogin(loginOutcome(err))
		return respondError(c, err)
	}
	prometheus.RecordLogin("success")

	return c.JSON(http.StatusOK, echo.Map{
		"token": session.Token,
		"user": sessionUserJSON{
			ID:     session.User.ID,
			Email:  session.User.Email,
			Role:   string(session.User.Role),
			Tenant: tenantDetail(session.Tenant),
		},
	})
}

func loginOutcome(err error) string {
	switch errs.CodeOf(err) {
	case errs.Validation:
		return "invalid_request"
	case errs.Authentication:
		return "invalid_credentials"
	case errs.Integrity:
		return "tenant_error"
	default:
		return "error"
	}
}
