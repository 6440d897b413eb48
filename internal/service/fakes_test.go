package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/limiter"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

/************ users ************/
type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	nextID  int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.User{}
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return errs.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	f.byEmail[u.Email] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

/************ limiter ************/
type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

/************ tx ************/

// fakeTx runs fn inline and counts commits and rollbacks.
type fakeTx struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
}

var _ repository.TxManager = (*fakeTx)(nil)

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.rollbacks++
	} else {
		f.commits++
	}
	return err
}

/************ audit store ************/
type memAudit struct {
	mu     sync.Mutex
	recs   []model.AuditRecord
	err    error
	nextID int64
}

var _ repository.AuditRepository = (*memAudit)(nil)

func (m *memAudit) Append(_ context.Context, rec *model.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	rec.ID = m.nextID
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memAudit) List(_ context.Context, _ model.AuditFilter) ([]model.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditRecord(nil), m.recs...), nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.recs))
	for _, r := range m.recs {
		out = append(out, r.Action)
	}
	return out
}

/************ admissions ************/
type memApplicants struct {
	mu   sync.RWMutex
	byID map[int64]model.Applicant
}

func (m *memApplicants) GetByID(_ context.Context, id int64) (*model.Applicant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

type memSessions struct {
	mu   sync.RWMutex
	byID map[int64]model.ExamSession
	err  error
}

var _ repository.ExamSessionRepository = (*memSessions)(nil)

func (m *memSessions) GetByID(_ context.Context, id int64) (*model.ExamSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Reschedule(_ context.Context, id, roomID int64, startsAt, endsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	s.RoomID, s.StartsAt, s.EndsAt = roomID, startsAt, endsAt
	m.byID[id] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAssignments struct {
	mu     sync.Mutex
	byID   map[int64]model.Assignment
	nextID int64
}

var _ repository.AssignmentRepository = (*memAssignments)(nil)

func (m *memAssignments) Create(_ context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byID == nil {
		m.byID = map[int64]model.Assignment{}
	}
	for _, x := range m.byID {
		if x.ApplicantID == a.ApplicantID && x.ExamSessionID == a.ExamSessionID {
			return errs.ErrAlreadyExists
		}
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	m.byID[a.ID] = *a
	return nil
}

func (m *memAssignments) GetByID(_ context.Context, id int64) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &a, nil
}

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }
