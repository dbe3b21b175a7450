// Package tenancy is the single choke point that confines data access to
// one tenant. Every query touching tenant-owned tables goes through Scope.
package tenancy

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingTenant is raised when a scoped query has no tenant to scope to
var ErrMissingTenant = errors.New("tenancy: tenant id required")

// Column is the tenant discriminator present on every tenant-owned table
const Column = "tenant_id"

// Scope adds `tenant_id = ?` against the statement's primary table.
// An empty tenant id poisons the statement instead of widening it.
func Scope(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == "" {
			_ = db.AddError(ErrMissingTenant)
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  tenantID,
		})
	}
}

// DB returns a session on db bound to ctx and scoped to tenantID
func DB(ctx context.Context, db *gorm.DB, tenantID string) *gorm.DB {
	return db.WithContext(ctx).Scopes(Scope(tenantID))
}
