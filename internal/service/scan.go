package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/daviddatuX25/securecat-sub001/internal/credential"
	"github.com/daviddatuX25/securecat-sub001/internal/errs"
	"github.com/daviddatuX25/securecat-sub001/internal/metrics"
	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// ScanService verifies presented credentials at the exam room door.
type ScanService interface {
	// VerifyAndResolve checks the signature and resolves the live binding.
	VerifyAndResolve(ctx context.Context, payload, signature string) (model.Binding, error)
}

type ScanServiceImpl struct {
	signer   *credential.Signer
	resolver *credential.Resolver
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewScanService constructs ScanService.
func NewScanService(signer *credential.Signer, resolver *credential.Resolver, m *metrics.Metrics, log *zap.Logger) *ScanServiceImpl {
	return &ScanServiceImpl{signer: signer, resolver: resolver, metrics: m, log: log}
}

// VerifyAndResolve runs one scan: signature check, then payload decode, then
// binding resolution. Any failure rejects the scan; nothing is retried.
// The returned error wraps one of errs.ErrConfiguration,
// errs.ErrSignatureMismatch, errs.ErrMalformedPayload or
// errs.ErrUnresolvedBinding, or is a storage error.
func (s *ScanServiceImpl) VerifyAndResolve(ctx context.Context, payload, signature string) (model.Binding, error) {
	if err := s.signer.Check(payload, signature); err != nil {
		return model.Binding{}, s.reject(err, signature)
	}
	p, err := credential.Decode(payload)
	if err != nil {
		return model.Binding{}, s.reject(err, signature)
	}
	b, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return model.Binding{}, s.reject(err, signature)
	}

	s.metrics.ObserveScan(metrics.ScanAccepted)
	s.log.Info("credential accepted",
		zap.Int64("applicant_id", b.Applicant.ID),
		zap.Int64("exam_session_id", b.Session.ID),
		zap.Int64("room_id", b.Session.RoomID),
	)
	return b, nil
}

func (s *ScanServiceImpl) reject(err error, signature string) error {
	outcome := scanOutcome(err)
	s.metrics.ObserveScan(outcome)

	fields := []zap.Field{
		zap.String("outcome", outcome),
		zap.String("sig_prefix", sigPrefix(signature)),
		zap.Error(err),
	}
	switch outcome {
	case metrics.ScanMisconfig, metrics.ScanError:
		s.log.Error("credential rejected", fields...)
	default:
		s.log.Warn("credential rejected", fields...)
	}
	return err
}

func scanOutcome(err error) string {
	switch {
	case errors.Is(err, errs.ErrConfiguration):
		return metrics.ScanMisconfig
	case errors.Is(err, errs.ErrSignatureMismatch):
		return metrics.ScanInvalid
	case errors.Is(err, errs.ErrMalformedPayload):
		return metrics.ScanMalformed
	case errors.Is(err, errs.ErrUnresolvedBinding):
		return metrics.ScanUnresolved
	default:
		return metrics.ScanError
	}
}

// sigPrefix keeps enough of a signature to correlate log lines.
func sigPrefix(sig string) string {
	const n = 8
	if len(sig) <= n {
		return sig
	}
	return sig[:n]
}
