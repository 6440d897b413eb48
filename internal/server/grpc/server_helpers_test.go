package grpcserver

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"

	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/service"
)

func makeJWT(t *testing.T, sub, role string, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := service.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(iat),
			NotBefore: jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
		},
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

func tokenFor(t *testing.T, userID int64, role string, key []byte) string {
	t.Helper()
	return makeJWT(t, strconv.FormatInt(userID, 10), role, key, jwt.SigningMethodHS256, time.Now().UTC().Add(-time.Minute), 10*time.Minute)
}

func ctxWithAuth(token string) context.Context {
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + token,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

func Test_bearerTokenFromMD_OkAndErrors(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on empty token")
	}

	if _, err := bearerTokenFromMD(context.Background()); err == nil {
		t.Fatalf("want error on no metadata")
	}
}

func Test_actorFromCtx_Valid(t *testing.T) {
	t.Parallel()

	s := &Server{signKey: []byte("secret")}
	ctx := ctxWithAuth(tokenFor(t, 7, model.RoleStaff, s.signKey))
	ctx = peer.NewContext(ctx, &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 5555}})
	ctx = WithRequestID(ctx, "req-1")

	a, err := s.actorFromCtx(ctx)
	if err != nil {
		t.Fatalf("actorFromCtx: %v", err)
	}
	if a.UserID == nil || *a.UserID != 7 || a.Role != model.RoleStaff {
		t.Fatalf("actor mismatch: %+v", a)
	}
	if a.IP != "10.0.0.7" || a.RequestID != "req-1" {
		t.Fatalf("ip/request id mismatch: %+v", a)
	}
}

func Test_actorFromCtx_Rejects(t *testing.T) {
	t.Parallel()

	key := []byte("secret")
	s := &Server{signKey: key}
	now := time.Now().UTC()

	cases := map[string]context.Context{
		"no metadata": context.Background(),
		"expired":     ctxWithAuth(makeJWT(t, "7", model.RoleStaff, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour)),
		"bad subject": ctxWithAuth(makeJWT(t, "alice", model.RoleStaff, key, jwt.SigningMethodHS256, now, time.Hour)),
		"zero sub":    ctxWithAuth(makeJWT(t, "0", model.RoleStaff, key, jwt.SigningMethodHS256, now, time.Hour)),
		"bad role":    ctxWithAuth(makeJWT(t, "7", "root", key, jwt.SigningMethodHS256, now, time.Hour)),
		"wrong alg":   ctxWithAuth(makeJWT(t, "7", model.RoleStaff, key, jwt.SigningMethodHS384, now, time.Hour)),
		"wrong key":   ctxWithAuth(makeJWT(t, "7", model.RoleStaff, []byte("other"), jwt.SigningMethodHS256, now, time.Hour)),
	}
	for name, ctx := range cases {
		if _, err := s.actorFromCtx(ctx); err == nil {
			t.Fatalf("%s: want error", name)
		}
	}
}

func Test_remoteIP(t *testing.T) {
	t.Parallel()

	if got := remoteIP(context.Background()); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.IPv4(1, 2, 3, 4), Port: 99}})
	if got := remoteIP(ctx); got != "1.2.3.4" {
		t.Fatalf("want host only, got %q", got)
	}
	if got := remoteAddr(ctx); got != "1.2.3.4:99" {
		t.Fatalf("want full addr, got %q", got)
	}
}

func TestRequestIDFromCtx(t *testing.T) {
	t.Parallel()

	if _, ok := RequestIDFromCtx(context.Background()); ok {
		t.Fatalf("expected no request id in empty ctx")
	}
	if _, ok := RequestIDFromCtx(WithRequestID(context.Background(), "")); ok {
		t.Fatalf("empty request id must not count")
	}
	got, ok := RequestIDFromCtx(WithRequestID(context.Background(), "abc"))
	if !ok || got != "abc" {
		t.Fatalf("mismatch: %q %v", got, ok)
	}
}
