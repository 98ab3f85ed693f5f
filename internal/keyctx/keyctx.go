// Package keyctx implements the two context types that scope every
// encryption: the key context, which names where the data lives and may
// rotate keys periodically, and the data context, which carries per-row
// identifiers and never rotates.
package keyctx

import (
	"encoding/binary"

	intvalidation "github.com/allisson/coffio/internal/validation"
)

// DefaultPeriodicity is one tropical year in seconds, applied to a
// KeyContext created without an explicit periodicity.
const DefaultPeriodicity uint64 = 31_556_925

// KeyContext names where encrypted data lives (e.g. database, table,
// column). It is periodic when a periodicity is set (see Periodicity), causing the Cipher
// Engine to fold a time period into both the derived key and the AAD.
type KeyContext struct {
	elements    []string
	periodicity *uint64
}

// NewKeyContext builds a static key context from an ordered sequence of
// strings. Use NewPeriodicKeyContext or NewDefaultPeriodicKeyContext for a
// periodic one.
func NewKeyContext(elements ...string) *KeyContext {
	return &KeyContext{elements: elements}
}

// NewPeriodicKeyContext builds a periodic key context with the given
// periodicity in seconds. A non-positive periodicity is rejected.
func NewPeriodicKeyContext(periodicity uint64, elements ...string) (*KeyContext, error) {
	if err := intvalidation.PositiveSeconds.Validate(int64(periodicity)); err != nil {
		return nil, intvalidation.WrapValidationError(err)
	}
	p := periodicity
	return &KeyContext{elements: elements, periodicity: &p}, nil
}

// NewDefaultPeriodicKeyContext builds a periodic key context using
// DefaultPeriodicity.
func NewDefaultPeriodicKeyContext(elements ...string) *KeyContext {
	p := DefaultPeriodicity
	return &KeyContext{elements: elements, periodicity: &p}
}

// IsPeriodic reports whether this key context rotates keys over time.
func (k *KeyContext) IsPeriodic() bool { return k.periodicity != nil }

// Periodicity returns the configured periodicity in seconds and whether one
// is set.
func (k *KeyContext) Periodicity() (uint64, bool) {
	if k.periodicity == nil {
		return 0, false
	}
	return *k.periodicity, true
}

// Elements returns the ordered sequence of strings naming this context.
func (k *KeyContext) Elements() []string { return append([]string(nil), k.elements...) }

// TimePeriod computes floor(unixSeconds / periodicity). Callers must only
// invoke this when IsPeriodic is true.
func (k *KeyContext) TimePeriod(unixSeconds uint64) uint64 {
	return unixSeconds / *k.periodicity
}

// ElementsForDerivation returns the byte-string sequence fed to both the KDF
// context and the AAD: the context elements, plus LE64(timePeriod) appended
// when periodic.
func (k *KeyContext) ElementsForDerivation(timePeriod uint64, periodic bool) [][]byte {
	out := make([][]byte, 0, len(k.elements)+1)
	for _, e := range k.elements {
		out = append(out, []byte(e))
	}
	if periodic {
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, timePeriod)
		out = append(out, buf)
	}
	return out
}

// DataContext carries per-row identifiers (row id, owner id) that bind a
// ciphertext to the specific data it protects. It never rotates keys.
type DataContext struct {
	elements []string
}

// NewDataContext builds a data context from an ordered sequence of strings.
func NewDataContext(elements ...string) *DataContext {
	return &DataContext{elements: elements}
}

// Elements returns the ordered sequence of strings naming this context.
func (d *DataContext) Elements() []string { return append([]string(nil), d.elements...) }

// ElementsForDerivation returns the byte-string sequence fed to the AAD.
func (d *DataContext) ElementsForDerivation() [][]byte {
	out := make([][]byte, len(d.elements))
	for i, e := range d.elements {
		out[i] = []byte(e)
	}
	return out
}
