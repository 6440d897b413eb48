package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// AuditRepo implements the append-only AuditRepository using PostgreSQL.
// The audit_logs table additionally refuses UPDATE and DELETE via trigger.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

// Append inserts one audit row. Inside InTx it commits or rolls back with the
// business change it documents.
func (r *AuditRepo) Append(ctx context.Context, rec *model.AuditRecord) error {
	const q = `
INSERT INTO audit_logs (actor_user_id, actor_role, action, entity_type, entity_id, ip_address, request_id, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	var details any
	if len(rec.Details) > 0 {
		b, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		details = b
	}
	return r.db.q(ctx).QueryRow(ctx, q,
		rec.ActorUserID, rec.ActorRole, rec.Action, rec.EntityType, rec.EntityID,
		rec.IPAddress, rec.RequestID, details, rec.CreatedAt,
	).Scan(&rec.ID)
}

// List returns records matching f, newest first.
func (r *AuditRepo) List(ctx context.Context, f model.AuditFilter) ([]model.AuditRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.EntityType != "" {
		add("entity_type=$%d", f.EntityType)
	}
	if f.EntityID != "" {
		add("entity_id=$%d", f.EntityID)
	}
	if f.Action != "" {
		add("action=$%d", f.Action)
	}
	if f.ActorUserID != nil {
		add("actor_user_id=$%d", *f.ActorUserID)
	}

	q := `
SELECT id, actor_user_id, actor_role, action, entity_type, entity_id, ip_address, request_id, details, created_at
FROM audit_logs`
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit)
	q += fmt.Sprintf("\nORDER BY created_at DESC, id DESC\nLIMIT $%d", len(args))

	rows, err := r.db.q(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditRecord
	for rows.Next() {
		var (
			rec     model.AuditRecord
			details []byte
		)
		if err = rows.Scan(&rec.ID, &rec.ActorUserID, &rec.ActorRole, &rec.Action, &rec.EntityType,
			&rec.EntityID, &rec.IPAddress, &rec.RequestID, &details, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			dec := json.NewDecoder(bytes.NewReader(details))
			dec.UseNumber()
			if err = dec.Decode(&rec.Details); err != nil {
				return nil, fmt.Errorf("audit %d details: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
