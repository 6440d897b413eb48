package api

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a typed client for the SecureCAT service. Every call uses the
// JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, c *Client, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts)
}

func (c *Client) RegisterUser(ctx context.Context, in *RegisterUserRequest, opts ...grpc.CallOption) (*RegisterUserResponse, error) {
	return invoke[RegisterUserResponse](ctx, c, MethodRegisterUser, in, opts)
}

func (c *Client) CreateAssignment(ctx context.Context, in *CreateAssignmentRequest, opts ...grpc.CallOption) (*CreateAssignmentResponse, error) {
	return invoke[CreateAssignmentResponse](ctx, c, MethodCreateAssignment, in, opts)
}

func (c *Client) GetAssignment(ctx context.Context, in *GetAssignmentRequest, opts ...grpc.CallOption) (*GetAssignmentResponse, error) {
	return invoke[GetAssignmentResponse](ctx, c, MethodGetAssignment, in, opts)
}

func (c *Client) VerifyCredential(ctx context.Context, in *VerifyCredentialRequest, opts ...grpc.CallOption) (*VerifyCredentialResponse, error) {
	return invoke[VerifyCredentialResponse](ctx, c, MethodVerifyCredential, in, opts)
}

func (c *Client) RescheduleExamSession(ctx context.Context, in *RescheduleExamSessionRequest, opts ...grpc.CallOption) (*RescheduleExamSessionResponse, error) {
	return invoke[RescheduleExamSessionResponse](ctx, c, MethodRescheduleExamSession, in, opts)
}

func (c *Client) DeleteExamSession(ctx context.Context, in *DeleteExamSessionRequest, opts ...grpc.CallOption) (*DeleteExamSessionResponse, error) {
	return invoke[DeleteExamSessionResponse](ctx, c, MethodDeleteExamSession, in, opts)
}

func (c *Client) RecordAudit(ctx context.Context, in *RecordAuditRequest, opts ...grpc.CallOption) (*RecordAuditResponse, error) {
	return invoke[RecordAuditResponse](ctx, c, MethodRecordAudit, in, opts)
}

func (c *Client) ListAudit(ctx context.Context, in *ListAuditRequest, opts ...grpc.CallOption) (*ListAuditResponse, error) {
	return invoke[ListAuditResponse](ctx, c, MethodListAudit, in, opts)
}
