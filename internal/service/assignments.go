package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/daviddatuX25/securecat-sub001/internal/audit"
	"github.com/daviddatuX25/securecat-sub001/internal/credential"
	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/metrics"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

// AssignmentService assigns applicants to exam sessions and issues their credentials.
type AssignmentService interface {
	// Create assigns the applicant to the session and issues the credential.
	Create(ctx context.Context, actor *audit.ActorContext, applicantID, examSessionID int64) (model.Assignment, error)
	// Get returns a stored assignment with its credential pair unchanged.
	Get(ctx context.Context, id int64) (model.Assignment, error)
}

type AssignmentServiceImpl struct {
	tx          repository.TxManager
	applicants  repository.ApplicantRepository
	sessions    repository.ExamSessionRepository
	assignments repository.AssignmentRepository
	signer      *credential.Signer
	audit       *audit.Writer
	metrics     *metrics.Metrics
	log         *zap.Logger
	now         func() time.Time
}

// AssignmentDeps groups the collaborators of AssignmentServiceImpl.
type AssignmentDeps struct {
	Tx          repository.TxManager
	Applicants  repository.ApplicantRepository
	Sessions    repository.ExamSessionRepository
	Assignments repository.AssignmentRepository
	Signer      *credential.Signer
	Audit       *audit.Writer
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(d AssignmentDeps) *AssignmentServiceImpl {
	return &AssignmentServiceImpl{
		tx:          d.Tx,
		applicants:  d.Applicants,
		sessions:    d.Sessions,
		assignments: d.Assignments,
		signer:      d.Signer,
		audit:       d.Audit,
		metrics:     d.Metrics,
		log:         d.Log,
		now:         time.Now,
	}
}

// Create checks both records exist, signs a fresh credential, stores the
// assignment and writes assignment.create, all in one transaction. An
// existing assignment for the pair yields errs.ErrAlreadyExists and its
// stored credential is left untouched.
func (s *AssignmentServiceImpl) Create(ctx context.Context, actor *audit.ActorContext, applicantID, examSessionID int64) (model.Assignment, error) {
	if applicantID <= 0 || examSessionID <= 0 {
		return model.Assignment{}, fmt.Errorf("%w: applicant and exam session ids must be positive", errs.ErrInvalidArgument)
	}

	var a model.Assignment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.applicants.GetByID(ctx, applicantID); err != nil {
			return fmt.Errorf("applicant %d: %w", applicantID, err)
		}
		sess, err := s.sessions.GetByID(ctx, examSessionID)
		if err != nil {
			return fmt.Errorf("exam session %d: %w", examSessionID, err)
		}

		payload, sig, err := credential.Issue(s.signer, applicantID, examSessionID, s.now())
		if err != nil {
			return err
		}
		a = model.Assignment{
			ApplicantID:   applicantID,
			ExamSessionID: examSessionID,
			QRPayload:     payload,
			QRSignature:   sig,
		}
		if actor != nil && actor.UserID != nil {
			id := *actor.UserID
			a.IssuedBy = &id
		}
		if err := s.assignments.Create(ctx, &a); err != nil {
			return err
		}

		_, err = s.audit.Record(ctx, actor, audit.Entry{
			Action:     "assignment.create",
			EntityType: "Assignment",
			EntityID:   strconv.FormatInt(a.ID, 10),
			Details: map[string]any{
				"applicant_id":    applicantID,
				"exam_session_id": examSessionID,
				"room_id":         sess.RoomID,
			},
		})
		return err
	})
	if err != nil {
		return model.Assignment{}, err
	}

	s.metrics.IncCredentialsIssued()
	s.log.Info("credential issued",
		zap.Int64("assignment_id", a.ID),
		zap.Int64("applicant_id", applicantID),
		zap.Int64("exam_session_id", examSessionID),
	)
	return a, nil
}

// Get returns the stored assignment verbatim.
func (s *AssignmentServiceImpl) Get(ctx context.Context, id int64) (model.Assignment, error) {
	if id <= 0 {
		return model.Assignment{}, fmt.Errorf("%w: bad assignment id", errs.ErrInvalidArgument)
	}
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return model.Assignment{}, err
	}
	return *a, nil
}

// QRData is the document encoded into the printed QR image.
type QRData struct {
	Payload   string `json:"qr_payload"`
	Signature string `json:"qr_signature"`
}

// QRDataOf returns the QR document for a.
func QRDataOf(a model.Assignment) ([]byte, error) {
	return json.Marshal(QRData{Payload: a.QRPayload, Signature: a.QRSignature})
}
