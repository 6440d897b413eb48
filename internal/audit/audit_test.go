package audit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

type fakeStore struct {
	mu     sync.Mutex
	recs   []model.AuditRecord
	err    error
	lastF  model.AuditFilter
	nextID int64
}

var _ repository.AuditRepository = (*fakeStore)(nil)

func (f *fakeStore) Append(_ context.Context, rec *model.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	rec.ID = f.nextID
	f.recs = append(f.recs, *rec)
	return nil
}

func (f *fakeStore) List(_ context.Context, flt model.AuditFilter) ([]model.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastF = flt
	return append([]model.AuditRecord(nil), f.recs...), nil
}

func ptr[T any](v T) *T { return &v }

func TestRecord_ExplicitFieldsWin(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	w := NewWriter(st, zaptest.NewLogger(t))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	actor := &ActorContext{UserID: ptr(int64(7)), Role: model.RoleStaff, IP: "10.0.0.1"}

	rec, err := w.Record(context.Background(), actor, Entry{
		Action:      "application.approve",
		EntityType:  "Application",
		EntityID:    "42",
		ActorUserID: ptr(int64(99)),
		ActorRole:   ptr(model.RoleAdmin),
		IPAddress:   ptr("192.168.1.9"),
		Timestamp:   ts,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.ID)
	require.Equal(t, int64(99), *rec.ActorUserID)
	require.Equal(t, model.RoleAdmin, rec.ActorRole)
	require.Equal(t, "192.168.1.9", *rec.IPAddress)
	require.True(t, rec.CreatedAt.Equal(ts))
	require.Nil(t, rec.Details)
}

func TestRecord_ResolvesFromActor(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	w := NewWriter(st, zaptest.NewLogger(t))
	actor := &ActorContext{UserID: ptr(int64(7)), Role: model.RoleStaff, IP: "10.0.0.1", RequestID: "req-1"}

	before := time.Now()
	rec, err := w.Record(context.Background(), actor, Entry{
		Action:     "application.approve",
		EntityType: "Application",
		EntityID:   "42",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), *rec.ActorUserID)
	require.Equal(t, "staff", rec.ActorRole)
	require.Equal(t, "10.0.0.1", *rec.IPAddress)
	require.Equal(t, "req-1", *rec.RequestID)
	require.WithinDuration(t, before, rec.CreatedAt, 2*time.Second)

	require.Len(t, st.recs, 1)
	require.Equal(t, "application.approve", st.recs[0].Action)
}

func TestRecord_SystemDefaults(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	w := NewWriter(&fakeStore{}, zaptest.NewLogger(t), WithClock(func() time.Time { return fixed }))

	rec, err := w.Record(context.Background(), nil, Entry{
		Action:     "exam_session.delete",
		EntityType: "ExamSession",
		EntityID:   "5",
		Details:    map[string]any{},
	})
	require.NoError(t, err)
	require.Nil(t, rec.ActorUserID)
	require.Equal(t, "", rec.ActorRole)
	require.Nil(t, rec.IPAddress)
	require.Nil(t, rec.RequestID)
	require.Nil(t, rec.Details)
	require.True(t, rec.CreatedAt.Equal(fixed))
}

func TestRecord_ActorCopiesAreIndependent(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeStore{}, zaptest.NewLogger(t))
	uid := int64(7)
	actor := &ActorContext{UserID: &uid, Role: model.RoleStaff}

	rec, err := w.Record(context.Background(), actor, Entry{Action: "user.create", EntityType: "User", EntityID: "8"})
	require.NoError(t, err)
	uid = 1000
	require.Equal(t, int64(7), *rec.ActorUserID)
}

func TestRecord_Validation(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeStore{}, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, action := range []string{"", "approve", "Application.Approve", "application.", ".approve", "application approve"} {
		_, err := w.Record(ctx, nil, Entry{Action: action, EntityType: "Application", EntityID: "1"})
		require.ErrorIs(t, err, errs.ErrInvalidArgument, "action %q", action)
	}

	_, err := w.Record(ctx, nil, Entry{Action: "application.approve", EntityID: "1"})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)

	_, err = w.Record(ctx, nil, Entry{
		Action: "application.approve", EntityType: "Application", EntityID: "1",
		Details: map[string]any{"bad": make(chan int)},
	})
	require.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestRecord_DetailsNormalized(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeStore{}, zaptest.NewLogger(t))
	rec, err := w.Record(context.Background(), nil, Entry{
		Action: "assignment.create", EntityType: "Assignment", EntityID: "3",
		Details: map[string]any{"applicant_id": int64(10), "room": "A-101", "tags": []any{"a", "b"}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(10), rec.Details["applicant_id"])
	require.Equal(t, "A-101", rec.Details["room"])
	require.Equal(t, []any{"a", "b"}, rec.Details["tags"])
}

func TestRecord_DetailsKeepIntegersAndTypedSlices(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeStore{}, zaptest.NewLogger(t))
	big := int64(1)<<53 + 1
	rec, err := w.Record(context.Background(), nil, Entry{
		Action: "assignment.create", EntityType: "Assignment", EntityID: "3",
		Details: map[string]any{
			"applicant_id": big,
			"rooms":        []string{"A-101", "B-202"},
			"ids":          []int64{1, 2},
			"score":        87.5,
			"nested":       map[string]any{"room_id": int64(4)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, big, rec.Details["applicant_id"])
	require.Equal(t, []any{"A-101", "B-202"}, rec.Details["rooms"])
	require.Equal(t, []any{int64(1), int64(2)}, rec.Details["ids"])
	require.Equal(t, 87.5, rec.Details["score"])
	require.Equal(t, int64(4), rec.Details["nested"].(map[string]any)["room_id"])
}

func TestRecord_StoreFailure(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeStore{err: errors.New("disk full")}, zaptest.NewLogger(t))
	_, err := w.Record(context.Background(), nil, Entry{Action: "user.create", EntityType: "User", EntityID: "1"})
	require.ErrorIs(t, err, errs.ErrAuditWrite)
}

func TestRecord_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	w := NewWriter(st, zaptest.NewLogger(t))

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		id := strconv.Itoa(i)
		g.Go(func() error {
			_, err := w.Record(context.Background(), nil, Entry{Action: "user.create", EntityType: "User", EntityID: id})
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, st.recs, 50)
}

func TestList_ClampsLimit(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	w := NewWriter(st, zaptest.NewLogger(t))

	_, err := w.List(context.Background(), model.AuditFilter{})
	require.NoError(t, err)
	require.Equal(t, DefaultListLimit, st.lastF.Limit)

	_, err = w.List(context.Background(), model.AuditFilter{Limit: 5000, EntityType: "Application"})
	require.NoError(t, err)
	require.Equal(t, MaxListLimit, st.lastF.Limit)
	require.Equal(t, "Application", st.lastF.EntityType)
}
