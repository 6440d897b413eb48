package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/daviddatuX25/securecat-sub001/internal/audit"
	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

// ExamSessionService edits exam sessions. Issued credentials are never
// regenerated; scans pick up the new details through the resolver.
type ExamSessionService interface {
	// Reschedule moves a session to another room and time window.
	Reschedule(ctx context.Context, actor *audit.ActorContext, id, roomID int64, startsAt, endsAt time.Time) (model.ExamSession, error)
	// Delete removes a session. Its credentials no longer resolve.
	Delete(ctx context.Context, actor *audit.ActorContext, id int64) error
}

type ExamSessionServiceImpl struct {
	tx       repository.TxManager
	sessions repository.ExamSessionRepository
	audit    *audit.Writer
	log      *zap.Logger
}

// NewExamSessionService constructs ExamSessionService.
func NewExamSessionService(tx repository.TxManager, sessions repository.ExamSessionRepository, aw *audit.Writer, log *zap.Logger) *ExamSessionServiceImpl {
	return &ExamSessionServiceImpl{tx: tx, sessions: sessions, audit: aw, log: log}
}

// Reschedule updates room and window and records exam_session.update with
// the previous and new values.
func (s *ExamSessionServiceImpl) Reschedule(ctx context.Context, actor *audit.ActorContext, id, roomID int64, startsAt, endsAt time.Time) (model.ExamSession, error) {
	if id <= 0 || roomID <= 0 {
		return model.ExamSession{}, fmt.Errorf("%w: bad session or room id", errs.ErrInvalidArgument)
	}
	if startsAt.IsZero() || !endsAt.After(startsAt) {
		return model.ExamSession{}, fmt.Errorf("%w: session must end after it starts", errs.ErrInvalidArgument)
	}

	var updated *model.ExamSession
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		old, err := s.sessions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.sessions.Reschedule(ctx, id, roomID, startsAt, endsAt); err != nil {
			return err
		}
		if updated, err = s.sessions.GetByID(ctx, id); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, actor, audit.Entry{
			Action:     "exam_session.update",
			EntityType: "ExamSession",
			EntityID:   strconv.FormatInt(id, 10),
			Details: map[string]any{
				"old": sessionDetails(old),
				"new": sessionDetails(updated),
			},
		})
		return err
	})
	if err != nil {
		return model.ExamSession{}, err
	}
	s.log.Info("exam session rescheduled", zap.Int64("exam_session_id", id), zap.Int64("room_id", roomID))
	return *updated, nil
}

// Delete hard-deletes the session and records exam_session.delete.
func (s *ExamSessionServiceImpl) Delete(ctx context.Context, actor *audit.ActorContext, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: bad session id", errs.ErrInvalidArgument)
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		old, err := s.sessions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.sessions.Delete(ctx, id); err != nil {
			return err
		}
		_, err = s.audit.Record(ctx, actor, audit.Entry{
			Action:     "exam_session.delete",
			EntityType: "ExamSession",
			EntityID:   strconv.FormatInt(id, 10),
			Details:    map[string]any{"old": sessionDetails(old)},
		})
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("exam session deleted", zap.Int64("exam_session_id", id))
	return nil
}

func sessionDetails(s *model.ExamSession) map[string]any {
	return map[string]any{
		"room_id":   s.RoomID,
		"course_id": s.CourseID,
		"starts_at": s.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":   s.EndsAt.UTC().Format(time.RFC3339),
	}
}
