package service

import (
	"context"
	"errors"
	"fmt"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/pkg/errs"
	"notes-service/prometheus"

	"gorm.io/gorm"
)

// ResourceKind names a quota-limited resource
type ResourceKind string

const ResourceNotes ResourceKind = "notes"

// QuotaStatus is the outcome of a quota check. Limit is -1 for unlimited plans.
type QuotaStatus struct {
	Allowed bool
	Limit   int64
	Current int64
	Plan    model.Plan
}

// QuotaEngine decides whether a tenant may admit another resource under its plan
type QuotaEngine struct {
	db        *gorm.DB
	tenants   *repository.TenantStore
	notes     *repository.NoteStore
	freeLimit int
}

func NewQuotaEngine(db *gorm.DB, tenants *repository.TenantStore, notes *repository.NoteStore, freeLimit int) *QuotaEngine {
	return &QuotaEngine{db: db, tenants: tenants, notes: notes, freeLimit: freeLimit}
}

// CheckQuota reports current usage against the tenant's plan limit.
// It takes no locks; use Admit to act on the answer.
func (q *QuotaEngine) CheckQuota(ctx context.Context, tenantID string, kind ResourceKind) (QuotaStatus, error) {
	tenant, err := q.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return QuotaStatus{}, q.tenantError(tenantID, err)
	}
	current, err := q.count(ctx, q.notes, tenantID, kind)
	if err != nil {
		return QuotaStatus{}, err
	}
	return q.evaluate(tenant, current), nil
}

// Admit runs insert inside a transaction that holds the tenant row lock,
// after verifying there is room for one more resource of kind. When the
// plan is full it returns a QuotaExceeded error and insert is not called.
func (q *QuotaEngine) Admit(ctx context.Context, tenantID string, kind ResourceKind, insert func(tx *gorm.DB) error) (QuotaStatus, error) {
	var status QuotaStatus
	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := q.tenants.WithTx(tx).LockByID(ctx, tenantID)
		if err != nil {
			return q.tenantError(tenantID, err)
		}

		current, err := q.count(ctx, q.notes.WithTx(tx), tenantID, kind)
		if err != nil {
			return err
		}

		status = q.evaluate(tenant, current)
		if !status.Allowed {
			prometheus.RecordQuotaRejection(tenantID)
			return errs.OverQuota(status.Limit, status.Current, string(status.Plan))
		}
		return insert(tx)
	})
	return status, err
}

func (q *QuotaEngine) evaluate(tenant *model.Tenant, current int64) QuotaStatus {
	if tenant.Unlimited() {
		return QuotaStatus{Allowed: true, Limit: model.UnlimitedNotes, Current: current, Plan: tenant.Plan}
	}
	limit := int64(tenant.NoteLimit)
	if limit <= 0 {
		limit = int64(q.freeLimit)
	}
	return QuotaStatus{Allowed: current < limit, Limit: limit, Current: current, Plan: tenant.Plan}
}

func (q *QuotaEngine) count(ctx context.Context, notes *repository.NoteStore, tenantID string, kind ResourceKind) (int64, error) {
	switch kind {
	case ResourceNotes:
		n, err := notes.Count(ctx, tenantID)
		if err != nil {
			return 0, errs.Wrap(err, "count notes")
		}
		return n, nil
	default:
		return 0, errs.Wrap(fmt.Errorf("unknown resource kind %q", kind), "check quota")
	}
}

func (q *QuotaEngine) tenantError(tenantID string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.IntegrityFault("Tenant configuration error", fmt.Errorf("tenant %s: %w", tenantID, err))
	}
	return errs.Wrap(err, "load tenant")
}
