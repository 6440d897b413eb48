// Package service contains application services for staff authentication,
// credential issuance and scanning, and exam session changes.
package service

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/daviddatuX25/securecat-sub001/internal/audit"
	pkgcrypto "github.com/daviddatuX25/securecat-sub001/internal/crypto"
	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/limiter"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
	"github.com/daviddatuX25/securecat-sub001/internal/repository"
)

// MinPasswordLen is the shortest accepted staff password.
const MinPasswordLen = 8

// Claims is the access token body: sub is the user id, role the staff role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService defines staff account and login operations.
type AuthService interface {
	// Register creates a staff user with secure password hashing.
	Register(ctx context.Context, actor *audit.ActorContext, email, password, role string) (model.User, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	tx        repository.TxManager
	audit     *audit.Writer
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tx repository.TxManager,
	aw *audit.Writer,
	signKey []byte,
	accessTTL time.Duration,
	lim limiter.Limiter,
	log *zap.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		users: users, tx: tx, audit: aw,
		signKey: signKey, accessTTL: accessTTL, lim: lim,
		log: log, now: time.Now,
	}
}

// Register creates a user record with a per-user salt. The insert and its
// user.create audit row commit together.
func (s *AuthServiceImpl) Register(ctx context.Context, actor *audit.ActorContext, email, password, role string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, fmt.Errorf("%w: bad email", errs.ErrInvalidArgument)
	}
	if len(password) < MinPasswordLen {
		return model.User{}, fmt.Errorf("%w: password shorter than %d", errs.ErrInvalidArgument, MinPasswordLen)
	}
	if !model.ValidRole(role) {
		return model.User{}, fmt.Errorf("%w: unknown role %q", errs.ErrInvalidArgument, role)
	}

	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{
		Email:    email,
		Role:     role,
		SaltAuth: salt,
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		_, err := s.audit.Record(ctx, actor, audit.Entry{
			Action:     "user.create",
			EntityType: "User",
			EntityID:   strconv.FormatInt(u.ID, 10),
			Details:    map[string]any{"email": u.Email, "role": u.Role},
		})
		return err
	})
	if err != nil {
		return model.User{}, err
	}
	return *u, nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown email and wrong password look the same to the caller
		return model.Tokens{}, model.User{}, errs.ErrUnauthorized
	}

	if err := s.lim.Success(ctx, email, ipHash); err != nil {
		s.log.Warn("limiter reset failed", zap.Error(err))
	}

	access, exp, err := s.issueAccessToken(u)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}

	_, err = s.audit.Record(ctx, audit.System(hostOnly(ip), ""), audit.Entry{
		Action:      "user.login",
		EntityType:  "User",
		EntityID:    strconv.FormatInt(u.ID, 10),
		ActorUserID: &u.ID,
		ActorRole:   &u.Role,
	})
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *u, nil
}

// issueAccessToken creates a signed HS256 JWT for u.
func (s *AuthServiceImpl) issueAccessToken(u *model.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	return signed, exp, err
}

// hostOnly drops the port from a peer address.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
