package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

// Resolver maps a verified payload to the live session and applicant.
// It keeps no state between calls.
type Resolver struct {
	sessions   repository.ExamSessionRepository
	applicants repository.ApplicantRepository
}

// NewResolver constructs a Resolver.
func NewResolver(sessions repository.ExamSessionRepository, applicants repository.ApplicantRepository) *Resolver {
	return &Resolver{sessions: sessions, applicants: applicants}
}

// Resolve loads the current records referenced by p. A missing session or
// applicant yields errs.ErrUnresolvedBinding; storage errors pass through.
func (r *Resolver) Resolve(ctx context.Context, p Payload) (model.Binding, error) {
	sess, err := r.sessions.GetByID(ctx, p.ExamSessionID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Binding{}, fmt.Errorf("%w: exam session %d", errs.ErrUnresolvedBinding, p.ExamSessionID)
		}
		return model.Binding{}, fmt.Errorf("load exam session: %w", err)
	}
	app, err := r.applicants.GetByID(ctx, p.ApplicantID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Binding{}, fmt.Errorf("%w: applicant %d", errs.ErrUnresolvedBinding, p.ApplicantID)
		}
		return model.Binding{}, fmt.Errorf("load applicant: %w", err)
	}
	return model.Binding{Session: *sess, Applicant: *app, IssuedAt: p.IssuedAt}, nil
}
