package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/actiongate/actiongate/internal/audit/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// entrySigner signs audit entries with HMAC-SHA256 under a key derived from
// the configured root key via HKDF-SHA256. Derivation separates signing key
// usage from any other use of the root key material.
type entrySigner struct {
	signingKey []byte
}

// Sign generates the HMAC-SHA256 signature for the audit entry.
// Returns a 32-byte signature or an error if canonicalization fails.
func (e *entrySigner) Sign(entry *auditDomain.Entry) ([]byte, error) {
	canonical, err := e.canonicalizeEntry(entry)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to canonicalize audit entry")
	}

	mac := hmac.New(sha256.New, e.signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify checks the audit entry signature against its current field values.
// Returns nil if valid, ErrSignatureInvalid if the entry was tampered with.
func (e *entrySigner) Verify(entry *auditDomain.Entry) error {
	expectedSig, err := e.Sign(entry)
	if err != nil {
		return apperrors.Wrap(err, "failed to compute expected signature")
	}

	if !hmac.Equal(entry.Signature, expectedSig) {
		return auditDomain.ErrSignatureInvalid
	}

	return nil
}

// canonicalizeEntry converts an audit entry to its canonical byte
// representation for signing. Variable-length fields are length-prefixed so
// adjacent fields cannot be confused; fixed-width integers are big-endian.
// Format: request_id || credential_id || action_type || outcome || metadata ||
// duration_ms || created_at. The ID and Signature fields are excluded.
func (e *entrySigner) canonicalizeEntry(entry *auditDomain.Entry) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = appendLengthPrefixed(buf, []byte(entry.RequestID))

	// Absent credential encodes as a zero-length field
	if entry.CredentialID != nil {
		buf = appendLengthPrefixed(buf, entry.CredentialID[:])
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = appendLengthPrefixed(buf, []byte(entry.ActionType))
	buf = appendLengthPrefixed(buf, []byte(string(entry.Outcome)))

	// Metadata serializes through encoding/json, which sorts map keys, so the
	// representation is deterministic
	if entry.Metadata != nil {
		metadataBytes, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal metadata")
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	durationBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(durationBytes, uint64(entry.DurationMS))
	buf = append(buf, durationBytes...)

	// Microsecond precision: TIMESTAMPTZ and DATETIME(6) columns drop
	// sub-microsecond digits, and the signature must survive that round-trip.
	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(entry.CreatedAt.UnixMicro()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// NewEntrySigner creates an HMAC-based audit entry signer. The 32-byte
// signing key is derived from rootKey with HKDF-SHA256 so the root key itself
// never touches HMAC state. The info string is versioned for future algorithm
// changes.
func NewEntrySigner(rootKey []byte) (EntrySigner, error) {
	if len(rootKey) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "audit signing key must not be empty")
	}

	reader := hkdf.New(sha256.New, rootKey, nil, []byte("audit-entry-signing-v1"))
	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive audit signing key")
	}

	return &entrySigner{signingKey: signingKey}, nil
}
