// Package grpcserver exposes the SecureCAT gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/daviddatuX25/securecat-sub001/internal/api"
	"github.com/daviddatuX25/securecat-sub001/internal/audit"
	"github.com/daviddatuX25/securecat-sub001/internal/convert"
	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/service"
)

// AuditLog is the audit trail as seen by the transport.
type AuditLog interface {
	Record(ctx context.Context, actor *audit.ActorContext, e audit.Entry) (model.AuditRecord, error)
	List(ctx context.Context, f model.AuditFilter) ([]model.AuditRecord, error)
}

// Deps groups the services a Server dispatches to.
type Deps struct {
	Auth        service.AuthService
	Assignments service.AssignmentService
	Scans       service.ScanService
	Sessions    service.ExamSessionService
	Audit       AuditLog
	SignKey     []byte
	Log         *zap.Logger
}

// Server wires services into gRPC handlers.
type Server struct {
	auth        service.AuthService
	assignments service.AssignmentService
	scans       service.ScanService
	sessions    service.ExamSessionService
	audit       AuditLog
	signKey     []byte
	log         *zap.Logger
}

var _ api.SecureCATServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:        d.Auth,
		assignments: d.Assignments,
		scans:       d.Scans,
		sessions:    d.Sessions,
		audit:       d.Audit,
		signKey:     d.SignKey,
		log:         log,
	}
}

// Role sets allowed per RPC.
var (
	anyStaff   = []string{model.RoleAdmin, model.RoleStaff, model.RoleProctor}
	officeOnly = []string{model.RoleAdmin, model.RoleStaff}
	adminOnly  = []string{model.RoleAdmin}
)

// authorize authenticates the caller and checks its role.
func (s *Server) authorize(ctx context.Context, roles []string) (*audit.ActorContext, error) {
	actor, err := s.actorFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if !slices.Contains(roles, actor.Role) {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}
	return actor, nil
}

// --- Auth ---

// Login authenticates a staff user and returns an access token.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "empty email/password")
	}
	tok, u, err := s.auth.LoginWithIP(ctx, req.Email, req.Password, remoteAddr(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}
	return &api.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.ExpiresAt.UTC(),
		UserID:      u.ID,
		Role:        u.Role,
	}, nil
}

// RegisterUser creates a staff account. Admin only.
func (s *Server) RegisterUser(ctx context.Context, req *api.RegisterUserRequest) (*api.RegisterUserResponse, error) {
	actor, err := s.authorize(ctx, adminOnly)
	if err != nil {
		return nil, err
	}
	u, err := s.auth.Register(ctx, actor, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}
	return &api.RegisterUserResponse{UserID: u.ID}, nil
}

// --- Assignments ---

// CreateAssignment assigns an applicant to a session and issues the credential.
func (s *Server) CreateAssignment(ctx context.Context, req *api.CreateAssignmentRequest) (*api.CreateAssignmentResponse, error) {
	actor, err := s.authorize(ctx, officeOnly)
	if err != nil {
		return nil, err
	}
	a, err := s.assignments.Create(ctx, actor, req.ApplicantID, req.ExamSessionID)
	if err != nil {
		return nil, s.toStatus(ctx, "create assignment", err)
	}
	return &api.CreateAssignmentResponse{Assignment: convert.ToAPIAssignment(a)}, nil
}

// GetAssignment returns a stored assignment and its QR document.
func (s *Server) GetAssignment(ctx context.Context, req *api.GetAssignmentRequest) (*api.GetAssignmentResponse, error) {
	if _, err := s.authorize(ctx, officeOnly); err != nil {
		return nil, err
	}
	a, err := s.assignments.Get(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(ctx, "get assignment", err)
	}
	qr, err := service.QRDataOf(a)
	if err != nil {
		return nil, s.toStatus(ctx, "qr data", err)
	}
	return &api.GetAssignmentResponse{Assignment: convert.ToAPIAssignment(a), QRData: string(qr)}, nil
}

// --- Scanning ---

// VerifyCredential checks a scanned credential and returns its live binding.
// Callers learn only accept or reject; the reason stays in server logs.
func (s *Server) VerifyCredential(ctx context.Context, req *api.VerifyCredentialRequest) (*api.VerifyCredentialResponse, error) {
	if _, err := s.authorize(ctx, anyStaff); err != nil {
		return nil, err
	}
	b, err := s.scans.VerifyAndResolve(ctx, req.QRPayload, req.QRSignature)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSignatureMismatch),
			errors.Is(err, errs.ErrMalformedPayload),
			errors.Is(err, errs.ErrUnresolvedBinding),
			errors.Is(err, errs.ErrConfiguration):
			return nil, status.Error(codes.PermissionDenied, "invalid credential")
		default:
			s.log.Error("verify credential", zap.Error(err))
			return nil, status.Error(codes.Internal, "internal")
		}
	}
	return convert.ToAPIBinding(b), nil
}

// --- Exam sessions ---

// RescheduleExamSession moves a session; issued credentials stay valid.
func (s *Server) RescheduleExamSession(ctx context.Context, req *api.RescheduleExamSessionRequest) (*api.RescheduleExamSessionResponse, error) {
	actor, err := s.authorize(ctx, officeOnly)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Reschedule(ctx, actor, req.ID, req.RoomID, req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, s.toStatus(ctx, "reschedule", err)
	}
	return &api.RescheduleExamSessionResponse{Session: convert.ToAPIExamSession(sess)}, nil
}

// DeleteExamSession removes a session.
func (s *Server) DeleteExamSession(ctx context.Context, req *api.DeleteExamSessionRequest) (*api.DeleteExamSessionResponse, error) {
	actor, err := s.authorize(ctx, officeOnly)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(ctx, actor, req.ID); err != nil {
		return nil, s.toStatus(ctx, "delete session", err)
	}
	return &api.DeleteExamSessionResponse{}, nil
}

// --- Audit ---

// RecordAudit appends an entry attributed to the authenticated caller.
// Actor fields in the request are ignored.
func (s *Server) RecordAudit(ctx context.Context, req *api.RecordAuditRequest) (*api.RecordAuditResponse, error) {
	actor, err := s.authorize(ctx, anyStaff)
	if err != nil {
		return nil, err
	}
	if req.ActorUserID != nil || req.ActorRole != "" {
		s.log.Warn("ignoring client-supplied audit actor",
			zap.Int64("caller", *actor.UserID),
			zap.String("action", req.Action),
		)
	}
	rec, err := s.audit.Record(ctx, actor, audit.Entry{
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Details:    req.Details,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "record audit", err)
	}
	return &api.RecordAuditResponse{Record: convert.ToAPIAuditRecord(rec)}, nil
}

// ListAudit returns audit records, newest first. Admin only.
func (s *Server) ListAudit(ctx context.Context, req *api.ListAuditRequest) (*api.ListAuditResponse, error) {
	if _, err := s.authorize(ctx, adminOnly); err != nil {
		return nil, err
	}
	recs, err := s.audit.List(ctx, convert.FromAPIAuditFilter(req))
	if err != nil {
		return nil, s.toStatus(ctx, "list audit", err)
	}
	return &api.ListAuditResponse{Records: convert.ToAPIAuditRecords(recs)}, nil
}

// toStatus maps service errors to gRPC status codes.
func (s *Server) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrInvalidArgument):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, errs.ErrRateLimited):
		return status.Error(codes.ResourceExhausted, "rate limited")
	case errors.Is(err, errs.ErrConfiguration):
		s.log.Error(op, zap.Error(err))
		return status.Error(codes.FailedPrecondition, "credential signing is not configured")
	}
	rid, _ := RequestIDFromCtx(ctx)
	s.log.Error(op, zap.Error(err), zap.String("request_id", rid))
	return status.Errorf(codes.Internal, "%s failed", op)
}
