package grpcserver

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/daviddatuX25/securecat-sub001/internal/audit"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/service"
)

type ctxKey string

const requestIDKey ctxKey = "sc.requestID"

// WithRequestID stores the request correlation id in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx fetches the request correlation id from context.
func RequestIDFromCtx(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

func remoteAddr(ctx context.Context) string {
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return ""
}

// remoteIP is the peer host without port.
func remoteIP(ctx context.Context) string {
	addr := remoteAddr(ctx)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// actorFromCtx verifies the bearer JWT and builds the audit actor for the
// request from its claims, the peer address and the request id.
func (s *Server) actorFromCtx(ctx context.Context) (*audit.ActorContext, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return nil, err
	}

	var claims service.Claims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, errors.New("bad subject")
	}
	if !model.ValidRole(claims.Role) {
		return nil, errors.New("bad role")
	}

	rid, _ := RequestIDFromCtx(ctx)
	return &audit.ActorContext{UserID: &uid, Role: claims.Role, IP: remoteIP(ctx), RequestID: rid}, nil
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
