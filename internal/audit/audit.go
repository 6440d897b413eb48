// Package audit appends immutable records of state-changing actions.
//
// Every mutating flow calls Writer.Record. Actor identity, role, IP and
// timestamp are taken from the Entry when set explicitly, otherwise from the
// ActorContext the transport layer built for the request, otherwise from safe
// defaults. Nothing is read from process globals.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/metrics"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

// Listing limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var actionRe = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

// ActorContext describes who is performing the current request.
// A nil *ActorContext means a system-initiated action.
type ActorContext struct {
	UserID    *int64
	Role      string
	IP        string
	RequestID string
}

// System returns an actor context with no user, e.g. for pre-auth flows.
func System(ip, requestID string) *ActorContext {
	return &ActorContext{IP: ip, RequestID: requestID}
}

// Entry is one action to record. Pointer fields and a zero Timestamp mean
// "not supplied".
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	Details    map[string]any

	ActorUserID *int64
	ActorRole   *string
	IPAddress   *string
	Timestamp   time.Time
}

// Writer records audit entries into an append-only store.
type Writer struct {
	store   repository.AuditRepository
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the wall clock used for default timestamps.
func WithClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

// WithMetrics counts audit writes by result.
func WithMetrics(m *metrics.Metrics) Option { return func(w *Writer) { w.metrics = m } }

// NewWriter constructs a Writer over store.
func NewWriter(store repository.AuditRepository, log *zap.Logger, opts ...Option) *Writer {
	w := &Writer{store: store, log: log, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Record resolves e against actor and appends it. Any store failure is
// returned wrapped in errs.ErrAuditWrite; callers must fail their request.
func (w *Writer) Record(ctx context.Context, actor *ActorContext, e Entry) (model.AuditRecord, error) {
	if !actionRe.MatchString(e.Action) {
		return model.AuditRecord{}, fmt.Errorf("%w: action %q is not a dotted label", errs.ErrInvalidArgument, e.Action)
	}
	if e.EntityType == "" || e.EntityID == "" {
		return model.AuditRecord{}, fmt.Errorf("%w: entity type and id are required", errs.ErrInvalidArgument)
	}
	details, err := normalizeDetails(e.Details)
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("%w: details: %v", errs.ErrInvalidArgument, err)
	}

	rec := model.AuditRecord{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
	}
	w.resolve(&rec, actor, e)

	if err := w.store.Append(ctx, &rec); err != nil {
		w.metrics.ObserveAuditWrite(false)
		w.log.Error("audit append failed",
			zap.String("action", rec.Action),
			zap.String("entity_type", rec.EntityType),
			zap.String("entity_id", rec.EntityID),
			zap.Error(err),
		)
		return model.AuditRecord{}, fmt.Errorf("%w: %v", errs.ErrAuditWrite, err)
	}
	w.metrics.ObserveAuditWrite(true)
	return rec, nil
}

// resolve applies explicit value, then actor context, then default.
func (w *Writer) resolve(rec *model.AuditRecord, actor *ActorContext, e Entry) {
	switch {
	case e.ActorUserID != nil:
		id := *e.ActorUserID
		rec.ActorUserID = &id
	case actor != nil && actor.UserID != nil:
		id := *actor.UserID
		rec.ActorUserID = &id
	}

	switch {
	case e.ActorRole != nil:
		rec.ActorRole = *e.ActorRole
	case actor != nil:
		rec.ActorRole = actor.Role
	}

	switch {
	case e.IPAddress != nil:
		ip := *e.IPAddress
		rec.IPAddress = &ip
	case actor != nil && actor.IP != "":
		ip := actor.IP
		rec.IPAddress = &ip
	}

	if actor != nil && actor.RequestID != "" {
		rid := actor.RequestID
		rec.RequestID = &rid
	}

	rec.CreatedAt = e.Timestamp
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = w.now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
}

// List returns audit records for operator display.
func (w *Writer) List(ctx context.Context, f model.AuditFilter) ([]model.AuditRecord, error) {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	return w.store.List(ctx, f)
}

// normalizeDetails maps empty details to nil and reduces the rest to plain
// JSON shapes: map[string]any, []any, string, bool, nil, int64 for integral
// numbers and float64 otherwise. Values with no JSON representation are
// rejected.
func normalizeDetails(in map[string]any) (map[string]any, error) {
	if len(in) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	fromNumbers(raw)
	if _, err := structpb.NewStruct(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func fromNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = fromNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromNumbers(e)
		}
		return t
	default:
		return v
	}
}
