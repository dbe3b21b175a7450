package handler

import (
	"net/http"

	"notes-service/pkg/errs"

	"github.com/labstack/echo/v4"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func bindNote(c echo.Context) (noteRequest, error) {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return req, errs.Invalid("body", "Invalid request body")
	}
	return req, nil
}

// ListNotes handles GET /notes
func (h *Handler) ListNotes(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	notes, err := h.notes.List(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]noteJSON, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteJSON(&notes[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": out, "total": len(out)})
}

// CreateNote handles POST /notes
func (h *Handler) CreateNote(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := bindNote(c)
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Create(c.Request().Context(), id, req.Title, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"note": toNoteJSON(note)})
}

// GetNote handles GET /notes/:id
func (h *Handler) GetNote(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"note": toNoteJSON(note)})
}

// UpdateNote handles PUT /notes/:id
func (h *Handler) UpdateNote(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := bindNote(c)
	if err != nil {
		return respondError(c, err)
	}

	note, err := h.notes.Update(c.Request().Context(), id, c.Param("id"), req.Title, req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"note": toNoteJSON(note)})
}

// DeleteNote handles DELETE /notes/:id
func (h *Handler) DeleteNote(c echo.Context) error {
	id, err := actor(c)
	if err != nil {
		return respondError(c, err)
	}

	deleted, err := h.notes.Delete(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Note deleted successfully",
		"deletedNote": echo.Map{"id": deleted.ID, "title": deleted.Title},
	})
}
