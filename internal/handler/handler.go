// Package handler exposes the notes API over echo.
package handler

import (
	"time"

	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/internal/service"
	"notes-service/pkg/config"
	"notes-service/pkg/errs"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

// Handler holds the services behind the HTTP routes
type Handler struct {
	auth  *service.AuthService
	notes *service.NoteService
	admin *service.AdminService
	db    *gorm.DB
}

func New(auth *service.AuthService, notes *service.NoteService, admin *service.AdminService, db *gorm.DB) *Handler {
	return &Handler{auth: auth, notes: notes, admin: admin, db: db}
}

// NewEcho builds the server with global middleware and all routes registered
func NewEcho(h *Handler, cfg *config.ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	// order matters: the logger reads the request id header
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	h.Register(e)
	return e
}

// Register mounts the API routes on e
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/ready", h.Ready)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	e.POST("/auth", h.Login)

	authed := middleware.Auth(h.auth)

	notes := e.Group("/notes", authed)
	notes.GET("", h.ListNotes)
	notes.POST("", h.CreateNote)
	notes.GET("/:id", h.GetNote)
	notes.PUT("/:id", h.UpdateNote)
	notes.DELETE("/:id", h.DeleteNote)

	tenants := e.Group("/tenants/:slug", authed)
	tenants.POST("/upgrade", h.Upgrade)
	tenants.POST("/downgrade", h.Downgrade)
	tenants.POST("/invite", h.Invite)

	e.GET("/user/profile", h.Profile, authed)
}

// actor returns the identity stored by the auth middleware
func actor(c echo.Context) (jwtutil.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return jwtutil.Identity{}, errs.Unauthenticated("Authentication required")
	}
	return id, nil
}

type tenantJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Plan      model.Plan `json:"plan,omitempty"`
	NoteLimit *int       `json:"noteLimit,omitempty"`
}

func tenantSummary(t *model.Tenant) tenantJSON {
	return tenantJSON{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func tenantDetail(t *model.Tenant) tenantJSON {
	limit := t.NoteLimit
	return tenantJSON{ID: t.ID, Name: t.Name, Slug: t.Slug, Plan: t.Plan, NoteLimit: &limit}
}

type authorJSON struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type noteJSON struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	User      authorJSON `json:"user"`
}

func toNoteJSON(n *model.Note) noteJSON {
	email := n.User.Email
	if email == "" {
		email = "Unknown"
	}
	return noteJSON{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		User:      authorJSON{ID: n.UserID, Email: email},
	}
}
