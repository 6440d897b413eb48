package repository

import (
	"context"

	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// AuditRepository is the append-only audit store. It exposes no update or delete.
type AuditRepository interface {
	// Append inserts rec and sets rec.ID.
	Append(ctx context.Context, rec *model.AuditRecord) error
	// List returns records matching f, newest first.
	List(ctx context.Context, f model.AuditFilter) ([]model.AuditRecord, error)
}
