package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "securecat.v1.SecureCAT"

// Method names.
const (
	MethodLogin                 = "Login"
	MethodRegisterUser          = "RegisterUser"
	MethodCreateAssignment      = "CreateAssignment"
	MethodGetAssignment         = "GetAssignment"
	MethodVerifyCredential      = "VerifyCredential"
	MethodRescheduleExamSession = "RescheduleExamSession"
	MethodDeleteExamSession     = "DeleteExamSession"
	MethodRecordAudit           = "RecordAudit"
	MethodListAudit             = "ListAudit"
)

// FullMethod returns the "/service/method" path of method.
func FullMethod(method string) string { return "/" + ServiceName + "/" + method }

// SecureCATServer is the server API of the SecureCAT service.
type SecureCATServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RegisterUser(context.Context, *RegisterUserRequest) (*RegisterUserResponse, error)
	CreateAssignment(context.Context, *CreateAssignmentRequest) (*CreateAssignmentResponse, error)
	GetAssignment(context.Context, *GetAssignmentRequest) (*GetAssignmentResponse, error)
	VerifyCredential(context.Context, *VerifyCredentialRequest) (*VerifyCredentialResponse, error)
	RescheduleExamSession(context.Context, *RescheduleExamSessionRequest) (*RescheduleExamSessionResponse, error)
	DeleteExamSession(context.Context, *DeleteExamSessionRequest) (*DeleteExamSessionResponse, error)
	RecordAudit(context.Context, *RecordAuditRequest) (*RecordAuditResponse, error)
	ListAudit(context.Context, *ListAuditRequest) (*ListAuditResponse, error)
}

// ServiceDesc describes the SecureCAT service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecureCATServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodLogin, SecureCATServer.Login),
		unary(MethodRegisterUser, SecureCATServer.RegisterUser),
		unary(MethodCreateAssignment, SecureCATServer.CreateAssignment),
		unary(MethodGetAssignment, SecureCATServer.GetAssignment),
		unary(MethodVerifyCredential, SecureCATServer.VerifyCredential),
		unary(MethodRescheduleExamSession, SecureCATServer.RescheduleExamSession),
		unary(MethodDeleteExamSession, SecureCATServer.DeleteExamSession),
		unary(MethodRecordAudit, SecureCATServer.RecordAudit),
		unary(MethodListAudit, SecureCATServer.ListAudit),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securecat/v1/securecat",
}

// RegisterSecureCATServer registers srv on s.
func RegisterSecureCATServer(s grpc.ServiceRegistrar, srv SecureCATServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method descriptor for one request/response RPC.
func unary[Req, Resp any](name string, call func(SecureCATServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SecureCATServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SecureCATServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
