// Package cerrors defines the closed error taxonomy for IKM lifecycle,
// storage-codec parsing, cryptographic runtime failures and decryption
// policy denials. Every exported error wraps one of the general domain
// sentinels from internal/errors so callers can test broad categories
// with errors.Is while still recovering the precise kind via errors.As.
//
// No constructor here ever embeds a seed, a derived key, a nonce or
// plaintext in an error message; only lengths, tags and attacker-supplied
// (already-public) token bytes are reported.
package cerrors

import (
	"fmt"

	apperrors "github.com/allisson/coffio/internal/errors"
)

// IKM lifecycle errors.
var (
	// ErrIkmNoneAvailable indicates no IKM in the list is valid (non-revoked,
	// within its validity window) at the requested instant.
	ErrIkmNoneAvailable = apperrors.Wrap(apperrors.ErrNotFound, "no ikm available at the given time")
)

// IkmNotFoundError indicates no IKM with the given id exists in the list.
type IkmNotFoundError struct {
	ID uint32
}

func (e *IkmNotFoundError) Error() string {
	return fmt.Sprintf("ikm not found: id=%d", e.ID)
}

// Unwrap allows errors.Is(err, apperrors.ErrNotFound) to succeed.
func (e *IkmNotFoundError) Unwrap() error { return apperrors.ErrNotFound }

// Encoding/parsing errors, one type per distinct storage-codec failure mode
// (spec-mandated: each decoding failure must be separately identifiable).
var (
	ErrParsingBase64Error                      = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid base64 encoding")
	ErrParsingEncodedDataInvalidIkmlVersion     = apperrors.Wrap(apperrors.ErrInvalidInput, "missing or invalid ikml-v1 version prefix")
	ErrParsingEncodedDataInvalidEncVersion      = apperrors.Wrap(apperrors.ErrInvalidInput, "missing or invalid enc-v1 version prefix")
	ErrParsingEncodedDataInvalidIkmListLen      = apperrors.Wrap(apperrors.ErrInvalidInput, "ikm list has no parts")
	ErrParsingEncodedDataEmptyNonce             = apperrors.Wrap(apperrors.ErrInvalidInput, "empty nonce")
	ErrParsingEncodedDataEmptyCiphertext        = apperrors.Wrap(apperrors.ErrInvalidInput, "empty ciphertext")
)

// ParsingEncodedDataInvalidPartLenError indicates a token was split into an
// unexpected number of colon-separated parts.
type ParsingEncodedDataInvalidPartLenError struct {
	Expected int
	Got      int
}

func (e *ParsingEncodedDataInvalidPartLenError) Error() string {
	return fmt.Sprintf("invalid token part count: expected %d, got %d", e.Expected, e.Got)
}

func (e *ParsingEncodedDataInvalidPartLenError) Unwrap() error { return apperrors.ErrInvalidInput }

// ParsingEncodedDataInvalidIkmIdError indicates the decoded ikm id field was
// not exactly 4 bytes.
type ParsingEncodedDataInvalidIkmIdError struct {
	Got []byte
}

func (e *ParsingEncodedDataInvalidIkmIdError) Error() string {
	return fmt.Sprintf("invalid ikm id length: got %d bytes", len(e.Got))
}

func (e *ParsingEncodedDataInvalidIkmIdError) Unwrap() error { return apperrors.ErrInvalidInput }

// ParsingEncodedDataInvalidIkmLenError indicates a decoded IKM record was
// shorter than the minimum possible record length, or its length did not
// match the fixed fields plus its scheme's IKM size.
type ParsingEncodedDataInvalidIkmLenError struct {
	Got int
}

func (e *ParsingEncodedDataInvalidIkmLenError) Error() string {
	return fmt.Sprintf("invalid ikm record length: got %d bytes", e.Got)
}

func (e *ParsingEncodedDataInvalidIkmLenError) Unwrap() error { return apperrors.ErrInvalidInput }

// ParsingEncodedDataInvalidIkmListIdError indicates the id_counter field of
// an encoded IKM list was not exactly 4 bytes.
type ParsingEncodedDataInvalidIkmListIdError struct {
	Got []byte
}

func (e *ParsingEncodedDataInvalidIkmListIdError) Error() string {
	return fmt.Sprintf("invalid ikm list id_counter length: got %d bytes", len(e.Got))
}

func (e *ParsingEncodedDataInvalidIkmListIdError) Unwrap() error { return apperrors.ErrInvalidInput }

// ParsingEncodedDataInvalidTimestampError indicates a time period or
// timestamp field failed to decode to the expected fixed width.
type ParsingEncodedDataInvalidTimestampError struct {
	Got []byte
}

func (e *ParsingEncodedDataInvalidTimestampError) Error() string {
	return fmt.Sprintf("invalid timestamp encoding: got %d bytes", len(e.Got))
}

func (e *ParsingEncodedDataInvalidTimestampError) Unwrap() error { return apperrors.ErrInvalidInput }

// ParsingSchemeUnknownSchemeError indicates a scheme tag decoded from
// storage does not match any registered scheme.
type ParsingSchemeUnknownSchemeError struct {
	Tag uint32
}

func (e *ParsingSchemeUnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown scheme tag: %d", e.Tag)
}

func (e *ParsingSchemeUnknownSchemeError) Unwrap() error { return apperrors.ErrInvalidInput }

// Runtime errors.
var (
	// ErrRandomSource indicates the injected random byte source failed to
	// fill the requested number of bytes.
	ErrRandomSource = apperrors.Wrap(apperrors.ErrInvalidInput, "random source failed")

	// ErrSystemTime indicates the injected clock returned a time that cannot
	// be converted to a meaningful instant for the requested operation
	// (e.g. a periodic encryption requested before the Unix epoch).
	ErrSystemTime = apperrors.Wrap(apperrors.ErrInvalidInput, "system time error")
)

// SystemTimeReprError indicates a stored timestamp cannot be represented by
// the host's time type (e.g. overflow of a 64-bit seconds-since-epoch value).
type SystemTimeReprError struct {
	Seconds uint64
}

func (e *SystemTimeReprError) Error() string {
	return fmt.Sprintf("timestamp not representable: %d seconds since epoch", e.Seconds)
}

func (e *SystemTimeReprError) Unwrap() error { return apperrors.ErrInvalidInput }

// InvalidNonceSizeError indicates a nonce of the wrong length was supplied
// to an AEAD operation.
type InvalidNonceSizeError struct {
	Expected int
	Got      int
}

func (e *InvalidNonceSizeError) Error() string {
	return fmt.Sprintf("invalid nonce size: expected %d, got %d", e.Expected, e.Got)
}

func (e *InvalidNonceSizeError) Unwrap() error { return apperrors.ErrInvalidInput }

// AeadError indicates an AEAD seal or open operation failed, most commonly
// because the authentication tag did not verify during Open. The underlying
// cipher error is wrapped but never includes key, nonce or plaintext material.
type AeadError struct {
	Underlying error
}

func (e *AeadError) Error() string {
	return fmt.Sprintf("aead operation failed: %v", e.Underlying)
}

func (e *AeadError) Unwrap() error { return apperrors.ErrInvalidInput }

// Policy errors, one per spec policy condition.
var (
	ErrPolicyDecryptionRevoked     = apperrors.Wrap(apperrors.ErrForbidden, "ikm has been revoked")
	ErrPolicyDecryptionExpiredNow  = apperrors.Wrap(apperrors.ErrForbidden, "ikm has expired")
	ErrPolicyDecryptionExpiredEnc  = apperrors.Wrap(apperrors.ErrForbidden, "time period is beyond the ikm's expiration")
	ErrPolicyDecryptionEarly       = apperrors.Wrap(apperrors.ErrForbidden, "time period is before the ikm became valid")
	ErrPolicyDecryptionFuture      = apperrors.Wrap(apperrors.ErrForbidden, "time period is in the future")
)
