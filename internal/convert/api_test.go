package convert

import (
	"testing"
	"time"

	"github.com/daviddatuX25/securecat-sub001/internal/api"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

func TestToAPIAssignment_KeepsPairVerbatim(t *testing.T) {
	t.Parallel()

	by := int64(7)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	a := model.Assignment{
		ID: 3, ApplicantID: 10, ExamSessionID: 5,
		QRPayload:   `{"applicant_id":10,"exam_session_id":5,"issued_at":"2026-03-01T01:00:00Z"}`,
		QRSignature: "ab12",
		IssuedBy:    &by,
		CreatedAt:   created,
	}
	got := ToAPIAssignment(a)
	if got.QRPayload != a.QRPayload || got.QRSignature != a.QRSignature {
		t.Fatalf("credential pair changed: %+v", got)
	}
	if got.IssuedBy == nil || *got.IssuedBy != 7 {
		t.Fatalf("issued_by mismatch: %v", got.IssuedBy)
	}
	if got.CreatedAt.Location() != time.UTC || !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at must be the same instant in UTC: %v", got.CreatedAt)
	}
}

func TestToAPIBinding(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)
	b := model.Binding{
		Applicant: model.Applicant{ID: 10, FirstName: "Ana", LastName: "Cruz", ApplicationStatus: "approved"},
		Session: model.ExamSession{
			ID: 5, CourseCode: "BSCS", RoomID: 2, RoomName: "B-201", Building: "Main",
			Proctor: "p@example.edu", StartsAt: start, EndsAt: start.Add(2 * time.Hour),
		},
		IssuedAt: start.Add(-72 * time.Hour),
	}
	got := ToAPIBinding(b)
	if got.Applicant.ID != 10 || got.Applicant.ApplicationStatus != "approved" {
		t.Fatalf("applicant mismatch: %+v", got.Applicant)
	}
	if got.Session.RoomName != "B-201" || got.Session.Proctor != "p@example.edu" || !got.Session.EndsAt.Equal(start.Add(2*time.Hour)) {
		t.Fatalf("session mismatch: %+v", got.Session)
	}
	if !got.IssuedAt.Equal(b.IssuedAt) {
		t.Fatalf("issued_at mismatch")
	}
}

func TestAuditConversions(t *testing.T) {
	t.Parallel()

	if out := ToAPIAuditRecords(nil); out == nil || len(out) != 0 {
		t.Fatalf("nil listing must give empty slice, got %#v", out)
	}

	ip := "10.0.0.1"
	uid := int64(7)
	recs := ToAPIAuditRecords([]model.AuditRecord{{
		ID: 1, ActorUserID: &uid, ActorRole: "staff", Action: "application.approve",
		EntityType: "Application", EntityID: "42", IPAddress: &ip,
		Details: map[string]any{"k": "v"},
	}})
	if len(recs) != 1 || *recs[0].ActorUserID != 7 || *recs[0].IPAddress != ip || recs[0].Details["k"] != "v" {
		t.Fatalf("record mismatch: %+v", recs)
	}

	if f := FromAPIAuditFilter(nil); f != (model.AuditFilter{}) {
		t.Fatalf("nil request must give zero filter")
	}
	f := FromAPIAuditFilter(&api.ListAuditRequest{EntityType: "Application", EntityID: "42", Limit: 5, ActorUserID: &uid})
	if f.EntityType != "Application" || f.EntityID != "42" || f.Limit != 5 || *f.ActorUserID != 7 {
		t.Fatalf("filter mismatch: %+v", f)
	}
}
