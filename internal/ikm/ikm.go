// Package ikm implements the IKM record and the IKM list: the versioned,
// serializable collection of long-lived seeds that the Cipher Engine draws
// keys from. The list does not lock internally; callers sharing a list
// across goroutines must serialize mutation against concurrent encryption
// or decryption themselves.
package ikm

import (
	"time"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/randclock"
	"github.com/allisson/coffio/internal/scheme"
)

// DefaultDuration is the validity window add_ikm grants a newly generated
// IKM, approximately ten years.
const DefaultDuration = 315_569_252 * time.Second

// DefaultScheme is the scheme add_ikm uses when the caller does not specify
// one.
const DefaultScheme = scheme.XChaCha20Poly1305Blake3

// Record is a single IKM: a seed bound to a scheme, a validity window and a
// revocation flag. Seed bytes are never exposed outside this package, the
// storage codec and the Cipher Engine.
type Record struct {
	ID        uint32
	Scheme    scheme.Tag
	seed      []byte
	NotBefore time.Time
	NotAfter  time.Time
	IsRevoked bool
}

// Seed returns the record's secret seed bytes. Callers must not retain or
// log the returned slice beyond the scope of a single derive operation.
func (r *Record) Seed() []byte { return r.seed }

// List is an ordered, insertion-order collection of IKM records plus a
// monotonically increasing id counter.
type List struct {
	records   []*Record
	idCounter uint32
}

// New returns an empty IKM list.
func New() *List {
	return &List{}
}

// AddIkm generates a new seed of DefaultScheme.IkmSize bytes and appends an
// IKM valid from now until now+DefaultDuration. Returns the new id.
func (l *List) AddIkm(src randclock.RandomSource, clock randclock.Clock) (uint32, error) {
	s, err := scheme.Lookup(DefaultScheme)
	if err != nil {
		return 0, err
	}
	now := clock.Now()
	return l.AddCustomIkm(src, s.Tag, now, now.Add(DefaultDuration))
}

// AddCustomIkm generates a new seed of scheme.ikm_size bytes and appends an
// IKM with the supplied validity window and scheme. Returns the new id.
func (l *List) AddCustomIkm(src randclock.RandomSource, tag scheme.Tag, notBefore, notAfter time.Time) (uint32, error) {
	s, err := scheme.Lookup(tag)
	if err != nil {
		return 0, err
	}

	seed := make([]byte, s.IkmSize)
	if err := randclock.Fill(src, seed); err != nil {
		return 0, err
	}

	l.idCounter++
	id := l.idCounter
	l.records = append(l.records, &Record{
		ID:        id,
		Scheme:    tag,
		seed:      seed,
		NotBefore: notBefore,
		NotAfter:  notAfter,
		IsRevoked: false,
	})
	return id, nil
}

// RevokeIkm sets is_revoked=true on the record with the given id.
func (l *List) RevokeIkm(id uint32) error {
	r, err := l.find(id)
	if err != nil {
		return err
	}
	r.IsRevoked = true
	return nil
}

// DeleteIkm removes the record with the given id. The id counter is not
// decremented and is never reused. The record's seed is zeroed before the
// record is dropped.
func (l *List) DeleteIkm(id uint32) error {
	for i, r := range l.records {
		if r.ID == id {
			Zero(r.seed)
			l.records = append(l.records[:i], l.records[i+1:]...)
			return nil
		}
	}
	return &cerrors.IkmNotFoundError{ID: id}
}

// Zero securely overwrites a byte slice with zeros, clearing secret key
// material (a seed or a derived key) from memory once it is no longer
// needed.
func Zero(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// GetLatestIkm iterates the list in reverse insertion order and returns the
// first non-revoked record whose validity window strictly contains atTime.
func (l *List) GetLatestIkm(atTime time.Time) (*Record, error) {
	for i := len(l.records) - 1; i >= 0; i-- {
		r := l.records[i]
		if !r.IsRevoked && r.NotBefore.Before(atTime) && r.NotAfter.After(atTime) {
			return r, nil
		}
	}
	return nil, cerrors.ErrIkmNoneAvailable
}

// GetIkmByID performs a linear scan for the record with the given id.
func (l *List) GetIkmByID(id uint32) (*Record, error) {
	return l.find(id)
}

// Records returns the records in insertion order. The returned slice and
// its elements must be treated as read-only; mutating them bypasses List's
// invariants.
func (l *List) Records() []*Record {
	return append([]*Record(nil), l.records...)
}

// IDCounter returns the current id counter.
func (l *List) IDCounter() uint32 { return l.idCounter }

// SetState reconstructs a list's internal state from decoded storage. Only
// the storage codec should call this.
func SetState(l *List, idCounter uint32, records []*Record) {
	l.idCounter = idCounter
	l.records = records
}

func (l *List) find(id uint32) (*Record, error) {
	for _, r := range l.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, &cerrors.IkmNotFoundError{ID: id}
}

// NewRecord constructs a Record directly from its component fields. Only
// the storage codec should call this when decoding a serialized list.
func NewRecord(id uint32, tag scheme.Tag, seed []byte, notBefore, notAfter time.Time, revoked bool) *Record {
	return &Record{
		ID:        id,
		Scheme:    tag,
		seed:      seed,
		NotBefore: notBefore,
		NotAfter:  notAfter,
		IsRevoked: revoked,
	}
}
