// Package storage implements the bit-exact, version-prefixed text formats
// for the IKM list (ikml-v1) and the ciphertext token (enc-v1). Every
// decoding failure mode is surfaced as its own distinguishable error kind
// from internal/cerrors so operators can tell a truncated token from a
// tampered one from an unknown scheme.
package storage

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"strings"
	"time"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/ikm"
	"github.com/allisson/coffio/internal/scheme"
)

const (
	ikmlPrefix = "ikml-v1:"
	encPrefix  = "enc-v1:"

	ikmRecordFixedLen = 4 + 4 + 8 + 8 + 1 // id + scheme_tag + not_before + not_after + revoked, excluding seed
)

func b64(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

func unb64(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, cerrors.ErrParsingBase64Error
	}
	return b, nil
}

// EncodeIkmList serializes an IKM list to its ikml-v1 text form.
func EncodeIkmList(l *ikm.List) string {
	parts := make([]string, 0, len(l.Records())+1)

	counterBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(counterBuf, l.IDCounter())
	parts = append(parts, b64(counterBuf))

	for _, r := range l.Records() {
		buf := make([]byte, ikmRecordFixedLen+len(r.Seed()))
		binary.LittleEndian.PutUint32(buf[0:4], r.ID)
		binary.LittleEndian.PutUint32(buf[4:8], uint32(r.Scheme))
		copy(buf[8:8+len(r.Seed())], r.Seed())
		off := 8 + len(r.Seed())
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(r.NotBefore.Unix()))
		binary.LittleEndian.PutUint64(buf[off+8:off+16], uint64(r.NotAfter.Unix()))
		if r.IsRevoked {
			buf[off+16] = 1
		}
		parts = append(parts, b64(buf))
	}

	return ikmlPrefix + strings.Join(parts, ":")
}

// DecodeIkmList parses an ikml-v1 text form back into an IKM list.
func DecodeIkmList(s string) (*ikm.List, error) {
	rest, ok := strings.CutPrefix(s, ikmlPrefix)
	if !ok {
		return nil, cerrors.ErrParsingEncodedDataInvalidIkmlVersion
	}

	parts := strings.Split(rest, ":")
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "") {
		return nil, cerrors.ErrParsingEncodedDataInvalidIkmListLen
	}

	counterBytes, err := unb64(parts[0])
	if err != nil {
		return nil, err
	}
	if len(counterBytes) != 4 {
		return nil, &cerrors.ParsingEncodedDataInvalidIkmListIdError{Got: counterBytes}
	}
	idCounter := binary.LittleEndian.Uint32(counterBytes)

	records := make([]*ikm.Record, 0, len(parts)-1)
	for _, part := range parts[1:] {
		rec, err := decodeIkmRecord(part)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	l := ikm.New()
	ikm.SetState(l, idCounter, records)
	return l, nil
}

func decodeIkmRecord(part string) (*ikm.Record, error) {
	b, err := unb64(part)
	if err != nil {
		return nil, err
	}
	if len(b) < ikmRecordFixedLen {
		return nil, &cerrors.ParsingEncodedDataInvalidIkmLenError{Got: len(b)}
	}

	id := binary.LittleEndian.Uint32(b[0:4])
	tag := scheme.Tag(binary.LittleEndian.Uint32(b[4:8]))

	s, err := scheme.Lookup(tag)
	if err != nil {
		return nil, err
	}
	expectedLen := ikmRecordFixedLen + s.IkmSize
	if len(b) != expectedLen {
		return nil, &cerrors.ParsingEncodedDataInvalidIkmLenError{Got: len(b)}
	}

	seed := append([]byte(nil), b[8:8+s.IkmSize]...)
	off := 8 + s.IkmSize

	notBeforeSecs := binary.LittleEndian.Uint64(b[off : off+8])
	notAfterSecs := binary.LittleEndian.Uint64(b[off+8 : off+16])
	revoked := b[off+16] != 0

	notBefore, err := secsToTime(notBeforeSecs)
	if err != nil {
		return nil, err
	}
	notAfter, err := secsToTime(notAfterSecs)
	if err != nil {
		return nil, err
	}

	return ikm.NewRecord(id, tag, seed, notBefore, notAfter, revoked), nil
}

func secsToTime(secs uint64) (time.Time, error) {
	if secs > math.MaxInt64 {
		return time.Time{}, &cerrors.SystemTimeReprError{Seconds: secs}
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}

// EncodeToken serializes a ciphertext token to its enc-v1 text form.
// timePeriod is nil for a static key context.
func EncodeToken(ikmID uint32, nonce, ciphertext []byte, timePeriod *uint64) string {
	idBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBuf, ikmID)

	parts := []string{b64(idBuf), b64(nonce), b64(ciphertext)}
	if timePeriod != nil {
		tpBuf := make([]byte, 8)
		binary.LittleEndian.PutUint64(tpBuf, *timePeriod)
		parts = append(parts, b64(tpBuf))
	}
	return encPrefix + strings.Join(parts, ":")
}

// DecodeToken parses an enc-v1 ciphertext token.
func DecodeToken(s string) (ikmID uint32, nonce, ciphertext []byte, timePeriod *uint64, err error) {
	rest, ok := strings.CutPrefix(s, encPrefix)
	if !ok {
		return 0, nil, nil, nil, cerrors.ErrParsingEncodedDataInvalidEncVersion
	}

	parts := strings.Split(rest, ":")

	var tpPart string
	hasTimePeriod := false
	switch len(parts) {
	case 4:
		tpPart = parts[3]
		hasTimePeriod = true
		parts = parts[:3]
	case 3:
		// no time period
	default:
		return 0, nil, nil, nil, &cerrors.ParsingEncodedDataInvalidPartLenError{Expected: 3, Got: len(parts)}
	}

	idBytes, err := unb64(parts[0])
	if err != nil {
		return 0, nil, nil, nil, err
	}
	if len(idBytes) != 4 {
		return 0, nil, nil, nil, &cerrors.ParsingEncodedDataInvalidIkmIdError{Got: idBytes}
	}
	ikmID = binary.LittleEndian.Uint32(idBytes)

	nonce, err = unb64(parts[1])
	if err != nil {
		return 0, nil, nil, nil, err
	}
	if len(nonce) == 0 {
		return 0, nil, nil, nil, cerrors.ErrParsingEncodedDataEmptyNonce
	}

	ciphertext, err = unb64(parts[2])
	if err != nil {
		return 0, nil, nil, nil, err
	}
	if len(ciphertext) == 0 {
		return 0, nil, nil, nil, cerrors.ErrParsingEncodedDataEmptyCiphertext
	}

	if hasTimePeriod {
		tpBytes, err := unb64(tpPart)
		if err != nil {
			return 0, nil, nil, nil, err
		}
		if len(tpBytes) != 8 {
			return 0, nil, nil, nil, &cerrors.ParsingEncodedDataInvalidTimestampError{Got: tpBytes}
		}
		tp := binary.LittleEndian.Uint64(tpBytes)
		timePeriod = &tp
	}

	return ikmID, nonce, ciphertext, timePeriod, nil
}
