// Package model defines domain entities used by services and repositories.
package model

import "time"

// Staff roles carried in access tokens and audit records.
const (
	RoleAdmin   = "admin"
	RoleStaff   = "staff"
	RoleProctor = "proctor"
)

// ValidRole reports whether r is a known staff role.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleProctor:
		return true
	}
	return false
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User is a staff account. Passwords are never stored in plaintext.
type User struct {
	ID        int64
	Email     string // unique
	Role      string
	PwdHash   []byte // Argon2id(password, SaltAuth)
	SaltAuth  []byte // per-user auth salt
	CreatedAt time.Time
}

// Applicant is the current applicant record joined with its application.
type Applicant struct {
	ID                int64
	FirstName         string
	LastName          string
	Email             string
	ApplicationID     *int64
	ApplicationStatus string // pending|approved|rejected, "" if no application
}

// ExamSession is the live session record, including mutable operational details.
type ExamSession struct {
	ID         int64
	CourseID   int64
	CourseCode string
	CourseName string
	RoomID     int64
	RoomName   string
	Building   string
	ProctorID  *int64
	Proctor    string // proctor email, "" when unassigned
	StartsAt   time.Time
	EndsAt     time.Time
	UpdatedAt  time.Time
}

// Assignment links an applicant to an exam session and holds the credential
// pair issued at creation time. The pair is never regenerated.
type Assignment struct {
	ID            int64
	ApplicantID   int64
	ExamSessionID int64
	QRPayload     string
	QRSignature   string
	IssuedBy      *int64
	CreatedAt     time.Time
}

// Binding is what a verified credential currently resolves to.
type Binding struct {
	Session   ExamSession
	Applicant Applicant
	IssuedAt  time.Time
}

// AuditRecord is one immutable row of the audit trail.
type AuditRecord struct {
	ID          int64
	ActorUserID *int64
	ActorRole   string // "" if unknown, never NULL
	Action      string // dotted label, e.g. application.approve
	EntityType  string
	EntityID    string
	IPAddress   *string
	RequestID   *string
	Details     map[string]any // nil when empty
	CreatedAt   time.Time
}

// AuditFilter narrows an audit trail listing. Zero values mean "any".
type AuditFilter struct {
	EntityType  string
	EntityID    string
	Action      string
	ActorUserID *int64
	Limit       int
}
