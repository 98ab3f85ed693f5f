// Package cipher implements the encrypt/decrypt pipeline: it chooses an
// IKM, computes the time period, derives a key, builds the AAD, calls the
// scheme's AEAD, and encodes or decodes the storage token. Decryption
// inserts the policy engine between IKM lookup and key derivation.
package cipher

import (
	"log/slog"
	"time"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/canon"
	"github.com/allisson/coffio/internal/ikm"
	"github.com/allisson/coffio/internal/keyctx"
	"github.com/allisson/coffio/internal/metrics"
	"github.com/allisson/coffio/internal/policy"
	"github.com/allisson/coffio/internal/randclock"
	"github.com/allisson/coffio/internal/scheme"
	"github.com/allisson/coffio/internal/storage"
)

// Engine is the cipher engine: it holds a shared, read-only reference to an
// IKM list for its lifetime. Mutating that list (add/revoke/delete) must
// not race with Encrypt or Decrypt through the same Engine.
type Engine struct {
	list    *ikm.List
	src     randclock.RandomSource
	clock   randclock.Clock
	logger  *slog.Logger
	metrics metrics.CipherMetrics
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRandomSource overrides the default OS-backed random source.
func WithRandomSource(src randclock.RandomSource) Option {
	return func(e *Engine) { e.src = src }
}

// WithClock overrides the default wall clock.
func WithClock(clock randclock.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the logger used for policy Warn diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics sets the metrics sink used to record operation outcomes.
func WithMetrics(m metrics.CipherMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds a cipher engine over list. The list is borrowed, not
// copied or owned; the caller remains responsible for its lifetime.
func NewEngine(list *ikm.List, opts ...Option) *Engine {
	e := &Engine{
		list:    list,
		src:     randclock.SystemRandomSource(),
		clock:   randclock.SystemClock(),
		logger:  slog.Default(),
		metrics: metrics.NewNoOpCipherMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encrypt derives a key for keyCtx/dataCtx using the list's latest valid
// IKM at the current time, encrypts plaintext, and returns an enc-v1 token.
func (e *Engine) Encrypt(keyCtx *keyctx.KeyContext, dataCtx *keyctx.DataContext, plaintext []byte) (string, error) {
	return e.EncryptAtTime(keyCtx, dataCtx, plaintext, e.clock.Now())
}

// EncryptAtTime is Encrypt with an explicit instant, primarily for tests
// and backfill/migration tooling.
func (e *Engine) EncryptAtTime(keyCtx *keyctx.KeyContext, dataCtx *keyctx.DataContext, plaintext []byte, at time.Time) (token string, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordOperation("encrypt", status)
		e.metrics.RecordDuration("encrypt", status, time.Since(start))
	}()

	var timePeriod *uint64
	periodic := keyCtx.IsPeriodic()
	if periodic {
		if at.Unix() < 0 {
			return "", cerrors.ErrSystemTime
		}
		tp := keyCtx.TimePeriod(uint64(at.Unix()))
		timePeriod = &tp
	}

	record, err := e.list.GetLatestIkm(at)
	if err != nil {
		return "", err
	}

	s, err := scheme.Lookup(record.Scheme)
	if err != nil {
		return "", err
	}

	var tpValue uint64
	if timePeriod != nil {
		tpValue = *timePeriod
	}
	keyCtxElems := keyCtx.ElementsForDerivation(tpValue, periodic)

	key, err := s.KDF(canon.Canonicalize(keyCtxElems), record.Seed())
	if err != nil {
		return "", err
	}
	defer ikm.Zero(key)

	nonce, err := s.GenNonce(e.src)
	if err != nil {
		return "", err
	}

	aad := buildAAD(record.ID, nonce, keyCtxElems, dataCtx.ElementsForDerivation())

	ciphertext, err := s.Encrypt(key, nonce, plaintext, aad)
	if err != nil {
		return "", err
	}

	return storage.EncodeToken(record.ID, nonce, ciphertext, timePeriod), nil
}

// Decrypt decodes token, applies the default decryption policy, and returns
// the original plaintext.
func (e *Engine) Decrypt(keyCtx *keyctx.KeyContext, dataCtx *keyctx.DataContext, token string) ([]byte, error) {
	return e.DecryptWithPolicy(keyCtx, dataCtx, token, policy.Default())
}

// DecryptWithPolicy decodes token, evaluates pol against the IKM the token
// references, and returns the original plaintext if the policy and the AEAD
// tag both verify.
func (e *Engine) DecryptWithPolicy(keyCtx *keyctx.KeyContext, dataCtx *keyctx.DataContext, token string, pol policy.Policy) (plaintext []byte, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordOperation("decrypt", status)
		e.metrics.RecordDuration("decrypt", status, time.Since(start))
	}()

	ikmID, nonce, ciphertext, timePeriod, err := storage.DecodeToken(token)
	if err != nil {
		return nil, err
	}

	record, err := e.list.GetIkmByID(ikmID)
	if err != nil {
		return nil, err
	}

	var periodicity uint64
	if p, ok := keyCtx.Periodicity(); ok {
		periodicity = p
	}
	if err := pol.Check(e.logger, record, periodicity, timePeriod, e.clock.Now()); err != nil {
		return nil, err
	}

	s, err := scheme.Lookup(record.Scheme)
	if err != nil {
		return nil, err
	}

	periodic := timePeriod != nil
	var tpValue uint64
	if timePeriod != nil {
		tpValue = *timePeriod
	}
	keyCtxElems := keyCtx.ElementsForDerivation(tpValue, periodic)

	key, err := s.KDF(canon.Canonicalize(keyCtxElems), record.Seed())
	if err != nil {
		return nil, err
	}
	defer ikm.Zero(key)

	aad := buildAAD(record.ID, nonce, keyCtxElems, dataCtx.ElementsForDerivation())

	return s.Decrypt(key, nonce, ciphertext, aad)
}

func buildAAD(ikmID uint32, nonce []byte, keyCtxElemsForAAD [][]byte, dataCtxElems [][]byte) []byte {
	idBuf := leUint32(ikmID)
	parts := []string{
		canon.Canonicalize([][]byte{idBuf}),
		canon.Canonicalize([][]byte{nonce}),
		canon.Canonicalize(keyCtxElemsForAAD),
		canon.Canonicalize(dataCtxElems),
	}
	return []byte(canon.JoinCanonical(parts))
}

func leUint32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
