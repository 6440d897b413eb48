package repository

import (
	"context"
	"time"

	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// ApplicantRepository reads applicant records owned by the admissions domain.
type ApplicantRepository interface {
	// GetByID returns the current applicant joined with its latest application.
	GetByID(ctx context.Context, id int64) (*model.Applicant, error)
}

// ExamSessionRepository reads and edits exam sessions.
type ExamSessionRepository interface {
	// GetByID returns the session joined with its course, room and proctor.
	GetByID(ctx context.Context, id int64) (*model.ExamSession, error)
	// Reschedule moves a session to another room and/or time window.
	Reschedule(ctx context.Context, id, roomID int64, startsAt, endsAt time.Time) error
	// Delete hard-deletes a session.
	Delete(ctx context.Context, id int64) error
}

// AssignmentRepository stores applicant/session assignments with their credential.
type AssignmentRepository interface {
	// Create inserts an assignment and sets a.ID and a.CreatedAt.
	// A second assignment for the same applicant and session fails with errs.ErrAlreadyExists.
	Create(ctx context.Context, a *model.Assignment) error
	// GetByID loads an assignment.
	GetByID(ctx context.Context, id int64) (*model.Assignment, error)
}
