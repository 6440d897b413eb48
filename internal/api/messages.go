// Package api defines the SecureCAT gRPC service: its messages, the service
// descriptor, the JSON wire codec and a typed client.
//
// There is no .proto file. Messages are plain Go structs with json tags and
// travel with the "json" content-subtype (application/grpc+json) instead of
// protobuf binary. ServiceDesc is written by hand in the shape
// protoc-gen-go-grpc would generate, so calls must carry
// grpc.CallContentSubtype(CodecName); the Client built by NewClient adds it.
// Tools expecting protobuf, including grpcurl without a descriptor set,
// cannot call the service.
package api

import "time"

// --- Auth ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
}

type RegisterUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterUserResponse struct {
	UserID int64 `json:"user_id"`
}

// --- Assignments ---

// Assignment carries the credential pair exactly as stored.
type Assignment struct {
	ID            int64     `json:"id"`
	ApplicantID   int64     `json:"applicant_id"`
	ExamSessionID int64     `json:"exam_session_id"`
	QRPayload     string    `json:"qr_payload"`
	QRSignature   string    `json:"qr_signature"`
	IssuedBy      *int64    `json:"issued_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateAssignmentRequest struct {
	ApplicantID   int64 `json:"applicant_id"`
	ExamSessionID int64 `json:"exam_session_id"`
}

type CreateAssignmentResponse struct {
	Assignment Assignment `json:"assignment"`
}

type GetAssignmentRequest struct {
	ID int64 `json:"id"`
}

type GetAssignmentResponse struct {
	Assignment Assignment `json:"assignment"`
	// QRData is the JSON document to encode into the printed QR image.
	QRData string `json:"qr_data"`
}

// --- Scanning ---

type VerifyCredentialRequest struct {
	QRPayload   string `json:"qr_payload"`
	QRSignature string `json:"qr_signature"`
}

type Applicant struct {
	ID                int64  `json:"id"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email,omitempty"`
	ApplicationStatus string `json:"application_status,omitempty"`
}

type ExamSession struct {
	ID         int64     `json:"id"`
	CourseCode string    `json:"course_code"`
	CourseName string    `json:"course_name"`
	RoomID     int64     `json:"room_id"`
	RoomName   string    `json:"room_name"`
	Building   string    `json:"building,omitempty"`
	Proctor    string    `json:"proctor,omitempty"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// VerifyCredentialResponse is the live binding of an accepted credential.
type VerifyCredentialResponse struct {
	Applicant Applicant   `json:"applicant"`
	Session   ExamSession `json:"session"`
	IssuedAt  time.Time   `json:"issued_at"`
}

// --- Exam sessions ---

type RescheduleExamSessionRequest struct {
	ID       int64     `json:"id"`
	RoomID   int64     `json:"room_id"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type RescheduleExamSessionResponse struct {
	Session ExamSession `json:"session"`
}

type DeleteExamSessionRequest struct {
	ID int64 `json:"id"`
}

type DeleteExamSessionResponse struct{}

// --- Audit ---

type AuditRecord struct {
	ID          int64          `json:"id"`
	ActorUserID *int64         `json:"actor_user_id,omitempty"`
	ActorRole   string         `json:"actor_role"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	IPAddress   *string        `json:"ip_address,omitempty"`
	RequestID   *string        `json:"request_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RecordAuditRequest records an action on behalf of the authenticated caller.
type RecordAuditRequest struct {
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`

	// Actor fields are accepted on the wire for older clients and ignored.
	ActorUserID *int64 `json:"actor_user_id,omitempty"`
	ActorRole   string `json:"actor_role,omitempty"`
}

type RecordAuditResponse struct {
	Record AuditRecord `json:"record"`
}

type ListAuditRequest struct {
	EntityType  string `json:"entity_type,omitempty"`
	EntityID    string `json:"entity_id,omitempty"`
	Action      string `json:"action,omitempty"`
	ActorUserID *int64 `json:"actor_user_id,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type ListAuditResponse struct {
	Records []AuditRecord `json:"records"`
}
