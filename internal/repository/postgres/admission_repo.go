package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// ApplicantRepo implements ApplicantRepository using PostgreSQL.
type ApplicantRepo struct{ db *DB }

// NewApplicantRepo constructs an applicant repository.
func NewApplicantRepo(db *DB) *ApplicantRepo { return &ApplicantRepo{db: db} }

// GetByID returns the applicant with its most recent application, if any.
func (r *ApplicantRepo) GetByID(ctx context.Context, id int64) (*model.Applicant, error) {
	const q = `
SELECT a.id, a.first_name, a.last_name, a.email, ap.id, COALESCE(ap.status, '')
FROM applicants a
LEFT JOIN LATERAL (
  SELECT id, status FROM applications
  WHERE applicant_id = a.id
  ORDER BY created_at DESC, id DESC
  LIMIT 1
) ap ON true
WHERE a.id=$1`
	var a model.Applicant
	err := r.db.q(ctx).QueryRow(ctx, q, id).Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.ApplicationID, &a.ApplicationStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ExamSessionRepo implements ExamSessionRepository using PostgreSQL.
type ExamSessionRepo struct{ db *DB }

// NewExamSessionRepo constructs an exam session repository.
func NewExamSessionRepo(db *DB) *ExamSessionRepo { return &ExamSessionRepo{db: db} }

// GetByID returns the session joined with course, room and proctor.
func (r *ExamSessionRepo) GetByID(ctx context.Context, id int64) (*model.ExamSession, error) {
	const q = `
SELECT s.id, s.course_id, c.code, c.name, s.room_id, r.name, r.building,
       s.proctor_id, COALESCE(u.email, ''), s.starts_at, s.ends_at, s.updated_at
FROM exam_sessions s
JOIN courses c ON c.id = s.course_id
JOIN rooms r ON r.id = s.room_id
LEFT JOIN users u ON u.id = s.proctor_id
WHERE s.id=$1`
	var s model.ExamSession
	err := r.db.q(ctx).QueryRow(ctx, q, id).Scan(
		&s.ID, &s.CourseID, &s.CourseCode, &s.CourseName, &s.RoomID, &s.RoomName, &s.Building,
		&s.ProctorID, &s.Proctor, &s.StartsAt, &s.EndsAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Reschedule updates room and time window of a session.
func (r *ExamSessionRepo) Reschedule(ctx context.Context, id, roomID int64, startsAt, endsAt time.Time) error {
	const q = `
UPDATE exam_sessions
SET room_id=$2, starts_at=$3, ends_at=$4, updated_at=now()
WHERE id=$1`
	tag, err := r.db.q(ctx).Exec(ctx, q, id, roomID, startsAt, endsAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("room %d: %w", roomID, errs.ErrNotFound)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a session. Assignments referencing it cascade.
func (r *ExamSessionRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM exam_sessions WHERE id=$1`
	tag, err := r.db.q(ctx).Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// AssignmentRepo implements AssignmentRepository using PostgreSQL.
type AssignmentRepo struct{ db *DB }

// NewAssignmentRepo constructs an assignment repository.
func NewAssignmentRepo(db *DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

// Create inserts an assignment with its credential pair.
func (r *AssignmentRepo) Create(ctx context.Context, a *model.Assignment) error {
	const q = `
INSERT INTO assignments (applicant_id, exam_session_id, qr_payload, qr_signature, issued_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at`
	err := r.db.q(ctx).QueryRow(ctx, q, a.ApplicantID, a.ExamSessionID, a.QRPayload, a.QRSignature, a.IssuedBy).
		Scan(&a.ID, &a.CreatedAt)
	switch {
	case isUniqueViolation(err):
		return errs.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return errs.ErrNotFound
	}
	return err
}

// GetByID loads an assignment.
func (r *AssignmentRepo) GetByID(ctx context.Context, id int64) (*model.Assignment, error) {
	const q = `
SELECT id, applicant_id, exam_session_id, qr_payload, qr_signature, issued_by, created_at
FROM assignments WHERE id=$1`
	var a model.Assignment
	err := r.db.q(ctx).QueryRow(ctx, q, id).Scan(
		&a.ID, &a.ApplicantID, &a.ExamSessionID, &a.QRPayload, &a.QRSignature, &a.IssuedBy, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
