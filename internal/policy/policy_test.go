package policy

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/ikm"
)

func newRecord(notBefore, notAfter time.Time, revoked bool) *ikm.Record {
	return ikm.NewRecord(1, 1, make([]byte, 32), notBefore, notAfter, revoked)
}

func TestPolicy_Default(t *testing.T) {
	p := Default()
	assert.Equal(t, Warn, p.Revoked)
	assert.Equal(t, Warn, p.ExpiredNow)
	assert.Equal(t, Deny, p.ExpiredAtEncryption)
	assert.Equal(t, Deny, p.EarlyEncryption)
	assert.Equal(t, Deny, p.FutureEncryption)
}

func TestPolicy_Revoked(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000_000_000, 0), true)
	now := time.Unix(500, 0)

	t.Run("deny override denies", func(t *testing.T) {
		p := Default()
		p.Revoked = Deny
		err := p.Check(slog.Default(), record, 0, nil, now)
		assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionRevoked)
	})

	t.Run("allow override succeeds", func(t *testing.T) {
		p := Default()
		p.Revoked = Allow
		err := p.Check(slog.Default(), record, 0, nil, now)
		assert.NoError(t, err)
	})

	t.Run("warn is default and succeeds", func(t *testing.T) {
		p := Default()
		p.Revoked = Warn
		err := p.Check(slog.Default(), record, 0, nil, now)
		assert.NoError(t, err)
	})
}

func TestPolicy_ExpiredNow(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000, 0), false)
	now := time.Unix(2_000, 0)

	p := Default()
	err := p.Check(slog.Default(), record, 0, nil, now)
	assert.NoError(t, err, "default for ExpiredNow is Warn, so it succeeds")

	p.ExpiredNow = Deny
	err = p.Check(slog.Default(), record, 0, nil, now)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionExpiredNow)
}

func TestPolicy_ExpiredAtEncryption(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000, 0), false)
	periodicity := uint64(10)
	tooLate := uint64(1_000)    // notAfter(1000)/10 = 100 is max; 1000 far exceeds
	now := time.Unix(20_000, 0) // now_tp = 2000, so FutureEncryption does not fire

	err := Default().Check(slog.Default(), record, periodicity, &tooLate, now)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionExpiredEnc)

	p := Default()
	p.ExpiredAtEncryption = Allow
	require.NoError(t, p.Check(slog.Default(), record, periodicity, &tooLate, now))
}

func TestPolicy_EarlyEncryption(t *testing.T) {
	record := newRecord(time.Unix(1_000, 0), time.Unix(10_000, 0), false)
	periodicity := uint64(10)
	tooEarly := uint64(0)
	now := time.Unix(5_000, 0)

	err := Default().Check(slog.Default(), record, periodicity, &tooEarly, now)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionEarly)

	p := Default()
	p.EarlyEncryption = Allow
	require.NoError(t, p.Check(slog.Default(), record, periodicity, &tooEarly, now))
}

func TestPolicy_FutureEncryption(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000_000, 0), false)
	periodicity := uint64(10)
	now := time.Unix(500, 0) // now_tp = 50
	future := uint64(51)

	err := Default().Check(slog.Default(), record, periodicity, &future, now)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionFuture)

	p := Default()
	p.FutureEncryption = Allow
	require.NoError(t, p.Check(slog.Default(), record, periodicity, &future, now))
}

func TestPolicy_StaticKeyContextSkipsTimePeriodConditions(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000_000, 0), false)
	now := time.Unix(500, 0)

	err := Default().Check(slog.Default(), record, 0, nil, now)
	assert.NoError(t, err)
}

func TestPolicy_ShortCircuitsOnFirstDeny(t *testing.T) {
	record := newRecord(time.Unix(0, 0), time.Unix(1_000, 0), true)
	now := time.Unix(2_000, 0)

	p := Default()
	p.Revoked = Deny
	p.ExpiredNow = Deny
	err := p.Check(slog.Default(), record, 0, nil, now)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionRevoked, "revoked is checked first and short-circuits")
}
