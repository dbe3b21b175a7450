package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/pkg/errs"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoteNotFound = errs.NotFoundf("Note not found")

// DeletedSummary identifies a removed note
type DeletedSummary struct {
	ID    string
	Title string
}

// NoteService is the tenant-scoped note CRUD surface. Reads are open to
// every member of the tenant; writes are restricted to the note's creator.
type NoteService struct {
	notes *repository.NoteStore
	quota *QuotaEngine
	now   func() time.Time
}

func NewNoteService(notes *repository.NoteStore, quota *QuotaEngine) *NoteService {
	return &NoteService{notes: notes, quota: quota, now: time.Now}
}

func (s *NoteService) List(ctx context.Context, actor jwtutil.Identity) ([]model.Note, error) {
	notes, err := s.notes.List(ctx, actor.TenantID)
	if err != nil {
		return nil, errs.Wrap(err, "list notes")
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, actor jwtutil.Identity, id string) (*model.Note, error) {
	if !model.ValidID(id) {
		return nil, errs.Invalid("id", "Invalid note ID")
	}
	note, err := s.notes.Get(ctx, actor.TenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNoteNotFound
	}
	if err != nil {
		return nil, errs.Wrap(err, "get note")
	}
	return note, nil
}

// Create stores a note for the actor once the tenant's quota admits it
func (s *NoteService) Create(ctx context.Context, actor jwtutil.Identity, title, content string) (*model.Note, error) {
	title, err := validateNote(title, content)
	if err != nil {
		return nil, err
	}

	now := s.now()
	note := &model.Note{
		Title:     title,
		Content:   content,
		UserID:    actor.UserID,
		TenantID:  actor.TenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	status, err := s.quota.Admit(ctx, actor.TenantID, ResourceNotes, func(tx *gorm.DB) error {
		return s.notes.WithTx(tx).Create(ctx, note)
	})
	if err != nil {
		if errs.CodeOf(err) == errs.QuotaExceeded {
			logger.FromContext(ctx).Info("Note creation rejected by quota",
				zap.String("tenant_id", actor.TenantID),
				zap.Int64("limit", status.Limit),
				zap.Int64("current", status.Current))
			return nil, err
		}
		if _, ok := errs.As(err); ok {
			return nil, err
		}
		return nil, errs.Wrap(err, "create note")
	}

	note.User = model.User{ID: actor.UserID, Email: actor.Email, TenantID: actor.TenantID}
	prometheus.RecordNoteOperation("create")
	return note, nil
}

// Update rewrites a note owned by the actor
func (s *NoteService) Update(ctx context.Context, actor jwtutil.Identity, id, title, content string) (*model.Note, error) {
	if !model.ValidID(id) {
		return nil, errs.Invalid("id", "Invalid note ID")
	}
	title, err := validateNote(title, content)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.UpdateOwned(ctx, actor.TenantID, actor.UserID, id, title, content, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NotFoundf("Note not found or access denied")
	}
	if err != nil {
		return nil, errs.Wrap(err, "update note")
	}

	prometheus.RecordNoteOperation("update")
	return note, nil
}

// Delete removes a note owned by the actor
func (s *NoteService) Delete(ctx context.Context, actor jwtutil.Identity, id string) (*DeletedSummary, error) {
	if !model.ValidID(id) {
		return nil, errs.Invalid("id", "Invalid note ID")
	}

	note, err := s.notes.DeleteOwned(ctx, actor.TenantID, actor.UserID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errs.NotFoundf("Note not found or access denied")
	}
	if err != nil {
		return nil, errs.Wrap(err, "delete note")
	}

	prometheus.RecordNoteOperation("delete")
	return &DeletedSummary{ID: note.ID, Title: note.Title}, nil
}

// validateNote requires a non-blank title and content and returns the trimmed title
func validateNote(title, content string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errs.Invalid("title", "Title and content are required")
	}
	if strings.TrimSpace(content) == "" {
		return "", errs.Invalid("content", "Title and content are required")
	}
	return title, nil
}
