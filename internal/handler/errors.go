package handler

import (
	"fmt"
	"net/http"

	"notes-service/pkg/errs"
	"notes-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusOf maps an error kind onto its HTTP status
func statusOf(code errs.Code) int {
	switch code {
	case errs.Validation:
		return http.StatusBadRequest
	case errs.Authentication:
		return http.StatusUnauthorized
	case errs.Authorization, errs.QuotaExceeded:
		return http.StatusForbidden
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal details never
// reach the client.
func respondError(c echo.Context, err error) error {
	log := logger.FromContext(c.Request().Context())
	e, ok := errs.As(err)
	if !ok {
		e = errs.Wrap(err, "unclassified error")
	}

	status := statusOf(e.Code)
	switch e.Code {
	case errs.Internal:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(status, echo.Map{"error": "Internal server error"})
	case errs.Integrity:
		log.Error("Data integrity fault", zap.Error(err))
		return c.JSON(status, echo.Map{"error": e.Message})
	case errs.QuotaExceeded:
		body := echo.Map{"error": e.Message}
		if q := e.Quota; q != nil {
			body["details"] = fmt.Sprintf("You have reached the limit of %d notes for your plan. Please upgrade to create more notes.", q.Limit)
			body["limit"] = q.Limit
			body["current"] = q.Current
			body["plan"] = q.Plan
		}
		return c.JSON(status, body)
	case errs.Validation:
		body := echo.Map{"error": e.Message}
		if e.Field != "" {
			body["field"] = e.Field
		}
		return c.JSON(status, body)
	default:
		return c.JSON(status, echo.Map{"error": e.Message})
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg, isString := he.Message.(string)
		if !isString || he.Code >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, echo.Map{"error": msg})
		return
	}
	_ = respondError(c, err)
}
