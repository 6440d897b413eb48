// Package credential builds, signs, verifies and resolves admission credentials.
//
// A credential is a canonical payload naming an applicant and an exam session,
// plus an HMAC-SHA256 signature over the payload bytes. Room, schedule and
// course are deliberately absent: they are looked up live at scan time, so
// editing a session never invalidates credentials already handed out.
package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/daviddatuX25/securecat-sub001/internal/errs"
)

// maxPayloadLen bounds untrusted input read off a scanned code.
const maxPayloadLen = 512

// Payload is the minimal identifying content of a credential.
type Payload struct {
	ApplicantID   int64
	ExamSessionID int64
	IssuedAt      time.Time
}

// wirePayload fixes field order and names of the canonical encoding.
type wirePayload struct {
	ApplicantID   int64  `json:"applicant_id"`
	ExamSessionID int64  `json:"exam_session_id"`
	IssuedAt      string `json:"issued_at"`
}

// Build constructs a payload issued at now (UTC, whole seconds).
func Build(applicantID, examSessionID int64, now time.Time) (Payload, error) {
	if applicantID <= 0 || examSessionID <= 0 {
		return Payload{}, fmt.Errorf("%w: applicant and exam session ids must be positive", errs.ErrInvalidArgument)
	}
	return Payload{
		ApplicantID:   applicantID,
		ExamSessionID: examSessionID,
		IssuedAt:      now.UTC().Truncate(time.Second),
	}, nil
}

// Encode returns the canonical serialization that gets signed.
func (p Payload) Encode() string {
	b, _ := json.Marshal(wirePayload{
		ApplicantID:   p.ApplicantID,
		ExamSessionID: p.ExamSessionID,
		IssuedAt:      p.IssuedAt.UTC().Format(time.RFC3339),
	})
	return string(b)
}

// Decode strictly parses a presented payload. Only the exact bytes Encode
// would produce are accepted.
func Decode(s string) (Payload, error) {
	if s == "" || len(s) > maxPayloadLen {
		return Payload{}, errs.ErrMalformedPayload
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()

	var w wirePayload
	if err := dec.Decode(&w); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", errs.ErrMalformedPayload, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Payload{}, fmt.Errorf("%w: trailing data", errs.ErrMalformedPayload)
	}
	if w.ApplicantID <= 0 || w.ExamSessionID <= 0 {
		return Payload{}, fmt.Errorf("%w: non-positive id", errs.ErrMalformedPayload)
	}
	issued, err := time.Parse(time.RFC3339, w.IssuedAt)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: issued_at: %v", errs.ErrMalformedPayload, err)
	}
	p := Payload{
		ApplicantID:   w.ApplicantID,
		ExamSessionID: w.ExamSessionID,
		IssuedAt:      issued.UTC(),
	}
	if p.Encode() != s {
		return Payload{}, fmt.Errorf("%w: not in canonical form", errs.ErrMalformedPayload)
	}
	return p, nil
}
