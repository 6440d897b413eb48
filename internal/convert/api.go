// Package convert maps domain models to API messages and back.
package convert

import (
	"github.com/daviddatuX25/securecat-sub001/internal/api"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// --- Assignments ---

// ToAPIAssignment copies the stored credential pair without touching it.
func ToAPIAssignment(a model.Assignment) api.Assignment {
	return api.Assignment{
		ID:            a.ID,
		ApplicantID:   a.ApplicantID,
		ExamSessionID: a.ExamSessionID,
		QRPayload:     a.QRPayload,
		QRSignature:   a.QRSignature,
		IssuedBy:      a.IssuedBy,
		CreatedAt:     a.CreatedAt.UTC(),
	}
}

// --- Scanning ---

// ToAPIApplicant converts an applicant record for display at the door.
func ToAPIApplicant(a model.Applicant) api.Applicant {
	return api.Applicant{
		ID:                a.ID,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Email:             a.Email,
		ApplicationStatus: a.ApplicationStatus,
	}
}

// ToAPIExamSession converts a live session record.
func ToAPIExamSession(s model.ExamSession) api.ExamSession {
	return api.ExamSession{
		ID:         s.ID,
		CourseCode: s.CourseCode,
		CourseName: s.CourseName,
		RoomID:     s.RoomID,
		RoomName:   s.RoomName,
		Building:   s.Building,
		Proctor:    s.Proctor,
		StartsAt:   s.StartsAt.UTC(),
		EndsAt:     s.EndsAt.UTC(),
	}
}

// ToAPIBinding converts the resolved binding of an accepted credential.
func ToAPIBinding(b model.Binding) *api.VerifyCredentialResponse {
	return &api.VerifyCredentialResponse{
		Applicant: ToAPIApplicant(b.Applicant),
		Session:   ToAPIExamSession(b.Session),
		IssuedAt:  b.IssuedAt.UTC(),
	}
}

// --- Audit ---

// ToAPIAuditRecord converts one audit row.
func ToAPIAuditRecord(r model.AuditRecord) api.AuditRecord {
	return api.AuditRecord{
		ID:          r.ID,
		ActorUserID: r.ActorUserID,
		ActorRole:   r.ActorRole,
		Action:      r.Action,
		EntityType:  r.EntityType,
		EntityID:    r.EntityID,
		IPAddress:   r.IPAddress,
		RequestID:   r.RequestID,
		Details:     r.Details,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// ToAPIAuditRecords converts a listing. A nil input yields an empty slice.
func ToAPIAuditRecords(in []model.AuditRecord) []api.AuditRecord {
	out := make([]api.AuditRecord, 0, len(in))
	for _, r := range in {
		out = append(out, ToAPIAuditRecord(r))
	}
	return out
}

// FromAPIAuditFilter converts a listing request to a store filter.
func FromAPIAuditFilter(in *api.ListAuditRequest) model.AuditFilter {
	if in == nil {
		return model.AuditFilter{}
	}
	return model.AuditFilter{
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
		Action:      in.Action,
		ActorUserID: in.ActorUserID,
		Limit:       in.Limit,
	}
}
