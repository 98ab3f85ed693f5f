// Package coffio derives per-operation symmetric keys from long-lived seed
// material and uses them to encrypt application-level data — database
// fields, small documents — into self-describing text tokens. Callers never
// handle symmetric keys directly: they supply a key context (where the data
// lives) and a data context (which row it is), and coffio derives a fresh
// key, encrypts, and hands back a token that carries everything needed to
// decrypt it later.
package coffio

import (
	"log/slog"
	"time"

	"github.com/allisson/coffio/internal/cipher"
	"github.com/allisson/coffio/internal/ikm"
	"github.com/allisson/coffio/internal/keyctx"
	"github.com/allisson/coffio/internal/metrics"
	"github.com/allisson/coffio/internal/policy"
	"github.com/allisson/coffio/internal/randclock"
	"github.com/allisson/coffio/internal/scheme"
	"github.com/allisson/coffio/internal/storage"
)

// SchemeTag identifies a registered (KDF, AEAD, nonce) tuple.
type SchemeTag = scheme.Tag

// Scheme tags, re-exported so callers never import internal/scheme.
const (
	SchemeXChaCha20Poly1305Blake3 = scheme.XChaCha20Poly1305Blake3
	SchemeAES128GCMSHA256         = scheme.AES128GCMSHA256
)

// Policy actions, re-exported so callers never import internal/policy.
const (
	PolicyAllow = policy.Allow
	PolicyWarn  = policy.Warn
	PolicyDeny  = policy.Deny
)

// IkmList is the versioned, serializable collection of IKM seeds that
// CipherEngine draws keys from. It does not lock internally; callers
// sharing a list across goroutines must serialize mutation against
// concurrent encryption or decryption themselves.
type IkmList = ikm.List

// KeyContext names where encrypted data lives (e.g. database, table,
// column) and may be periodic, rotating the derived key over time.
type KeyContext = keyctx.KeyContext

// DataContext carries per-row identifiers that bind a ciphertext to the
// specific data it protects.
type DataContext = keyctx.DataContext

// CipherEngine is the encrypt/decrypt pipeline bound to one IkmList.
type CipherEngine = cipher.Engine

// EngineOption configures a CipherEngine at construction time.
type EngineOption = cipher.Option

// Policy configures the five decrypt-time gating conditions.
type Policy = policy.Policy

// DefaultPolicy returns the spec-mandated default decryption policy:
// Revoked=Warn, ExpiredNow=Warn, ExpiredAtEncryption=Deny,
// EarlyEncryption=Deny, FutureEncryption=Deny.
func DefaultPolicy() Policy { return policy.Default() }

// NewIkmList returns an empty IKM list with id_counter = 0.
func NewIkmList() *IkmList { return ikm.New() }

// ImportIkmList parses an ikml-v1 text form into an IKM list.
func ImportIkmList(s string) (*IkmList, error) { return storage.DecodeIkmList(s) }

// ExportIkmList serializes an IKM list to its ikml-v1 text form.
func ExportIkmList(list *IkmList) string { return storage.EncodeIkmList(list) }

// NewKeyContext builds a static key context from an ordered sequence of
// strings.
func NewKeyContext(elements ...string) *KeyContext { return keyctx.NewKeyContext(elements...) }

// NewPeriodicKeyContext builds a periodic key context with an explicit
// periodicity in seconds. A non-positive periodicity is rejected.
func NewPeriodicKeyContext(periodicity uint64, elements ...string) (*KeyContext, error) {
	return keyctx.NewPeriodicKeyContext(periodicity, elements...)
}

// NewDefaultPeriodicKeyContext builds a periodic key context using the
// default periodicity of one tropical year.
func NewDefaultPeriodicKeyContext(elements ...string) *KeyContext {
	return keyctx.NewDefaultPeriodicKeyContext(elements...)
}

// NewDataContext builds a data context from an ordered sequence of strings.
func NewDataContext(elements ...string) *DataContext { return keyctx.NewDataContext(elements...) }

// WithRandomSource overrides the default OS-backed random source of a
// CipherEngine.
func WithRandomSource(src randclock.RandomSource) EngineOption { return cipher.WithRandomSource(src) }

// WithClock overrides the default wall clock of a CipherEngine.
func WithClock(clock randclock.Clock) EngineOption { return cipher.WithClock(clock) }

// WithLogger sets the logger a CipherEngine uses for policy Warn
// diagnostics.
func WithLogger(logger *slog.Logger) EngineOption { return cipher.WithLogger(logger) }

// WithMetrics sets the metrics sink a CipherEngine records operation
// outcomes to.
func WithMetrics(m metrics.CipherMetrics) EngineOption { return cipher.WithMetrics(m) }

// NewCipherEngine builds a cipher engine over list. The list is borrowed,
// not copied or owned; the caller remains responsible for its lifetime and
// for not mutating it concurrently with encryption or decryption through
// this engine.
func NewCipherEngine(list *IkmList, opts ...EngineOption) *CipherEngine {
	return cipher.NewEngine(list, opts...)
}

// Coffio bundles an IKM list, a cipher engine over it, and a default
// decryption policy behind one handle, mirroring the original's CipherBox:
// callers who don't need to juggle the list and the policy separately can
// use this instead.
type Coffio struct {
	List   *IkmList
	Engine *CipherEngine
	Policy Policy
}

// New builds a Coffio handle over a fresh, empty IKM list.
func New(opts ...EngineOption) *Coffio {
	list := NewIkmList()
	return &Coffio{
		List:   list,
		Engine: NewCipherEngine(list, opts...),
		Policy: DefaultPolicy(),
	}
}

// Open builds a Coffio handle over an IKM list imported from its ikml-v1
// text form.
func Open(serializedList string, opts ...EngineOption) (*Coffio, error) {
	list, err := ImportIkmList(serializedList)
	if err != nil {
		return nil, err
	}
	return &Coffio{
		List:   list,
		Engine: NewCipherEngine(list, opts...),
		Policy: DefaultPolicy(),
	}, nil
}

// Export serializes the underlying IKM list to its ikml-v1 text form.
func (c *Coffio) Export() string { return ExportIkmList(c.List) }

// Encrypt derives a key for keyCtx/dataCtx using the list's latest valid
// IKM at the current time and returns an enc-v1 token.
func (c *Coffio) Encrypt(keyCtx *KeyContext, dataCtx *DataContext, plaintext []byte) (string, error) {
	return c.Engine.Encrypt(keyCtx, dataCtx, plaintext)
}

// EncryptAtTime is Encrypt with an explicit instant.
func (c *Coffio) EncryptAtTime(keyCtx *KeyContext, dataCtx *DataContext, plaintext []byte, at time.Time) (string, error) {
	return c.Engine.EncryptAtTime(keyCtx, dataCtx, plaintext, at)
}

// Decrypt decodes token under the handle's default policy and returns the
// original plaintext.
func (c *Coffio) Decrypt(keyCtx *KeyContext, dataCtx *DataContext, token string) ([]byte, error) {
	return c.Engine.DecryptWithPolicy(keyCtx, dataCtx, token, c.Policy)
}

// DecryptWithPolicy decodes token under an explicit policy, overriding the
// handle's default for this call only.
func (c *Coffio) DecryptWithPolicy(keyCtx *KeyContext, dataCtx *DataContext, token string, pol Policy) ([]byte, error) {
	return c.Engine.DecryptWithPolicy(keyCtx, dataCtx, token, pol)
}
