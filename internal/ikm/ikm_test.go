package ikm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/randclock"
	"github.com/allisson/coffio/internal/scheme"
)

func TestList_AddIkm(t *testing.T) {
	l := New()
	id, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
	assert.Equal(t, uint32(1), l.IDCounter())

	r, err := l.GetIkmByID(1)
	require.NoError(t, err)
	assert.Equal(t, DefaultScheme, r.Scheme)
	assert.False(t, r.IsRevoked)
	assert.Len(t, r.Seed(), 32)

	id2, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)
	assert.Equal(t, uint32(2), id2)
}

func TestList_RevokeAndDelete(t *testing.T) {
	l := New()
	id, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)

	require.NoError(t, l.RevokeIkm(id))
	r, err := l.GetIkmByID(id)
	require.NoError(t, err)
	assert.True(t, r.IsRevoked)

	require.NoError(t, l.DeleteIkm(id))
	_, err = l.GetIkmByID(id)
	var notFound *cerrors.IkmNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint32(1), l.IDCounter(), "id counter is not decremented by delete")
}

func TestList_DeleteIkm_ZeroesSeed(t *testing.T) {
	l := New()
	id, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)

	r, err := l.GetIkmByID(id)
	require.NoError(t, err)
	seed := r.seed
	require.NotEmpty(t, seed)

	require.NoError(t, l.DeleteIkm(id))

	for _, b := range seed {
		assert.Zero(t, b)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)

	assert.NotPanics(t, func() { Zero(nil) })
}

func TestList_RevokeIkm_NotFound(t *testing.T) {
	l := New()
	err := l.RevokeIkm(99)
	var notFound *cerrors.IkmNotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint32(99), notFound.ID)
}

func TestList_GetLatestIkm_EmptyList(t *testing.T) {
	l := New()
	_, err := l.GetLatestIkm(time.Unix(0, 0))
	assert.ErrorIs(t, err, cerrors.ErrIkmNoneAvailable)
}

// buildTestStr constructs the six-IKM reference list used by the spec's
// latest-IKM-selection scenarios: ids assigned 1..6 in insertion order, with
// fixed validity windows and revocation flags.
func buildTestStr(t *testing.T) *List {
	t.Helper()
	l := New()
	windows := []struct {
		notBefore, notAfter int64
		revoked             bool
	}{
		{notBefore: 1_000, notAfter: 1_500_000_000, revoked: true},
		{notBefore: 1_500_000_001, notAfter: 1_600_000_000, revoked: false},
		{notBefore: 1_600_000_001, notAfter: 1_800_000_000, revoked: false},
		{notBefore: 1_800_000_001, notAfter: 1_900_000_000, revoked: false},
		{notBefore: 1_900_000_001, notAfter: 2_000_000_000, revoked: true},
		{notBefore: 2_000_000_001, notAfter: 2_100_000_000, revoked: false},
	}

	for _, w := range windows {
		id, err := l.AddCustomIkm(
			randclock.SystemRandomSource(),
			scheme.XChaCha20Poly1305Blake3,
			time.Unix(w.notBefore, 0),
			time.Unix(w.notAfter, 0),
		)
		require.NoError(t, err)
		if w.revoked {
			require.NoError(t, l.RevokeIkm(id))
		}
	}
	return l
}

func TestList_GetLatestIkm_ReferenceList(t *testing.T) {
	l := buildTestStr(t)

	t.Run("at=0 none available", func(t *testing.T) {
		_, err := l.GetLatestIkm(time.Unix(0, 0))
		assert.ErrorIs(t, err, cerrors.ErrIkmNoneAvailable)
	})

	t.Run("at=1592734902 selects id 2", func(t *testing.T) {
		r, err := l.GetLatestIkm(time.Unix(1_592_734_902, 0))
		require.NoError(t, err)
		assert.Equal(t, uint32(2), r.ID)
	})

	t.Run("at=1712475802 selects id 3", func(t *testing.T) {
		r, err := l.GetLatestIkm(time.Unix(1_712_475_802, 0))
		require.NoError(t, err)
		assert.Equal(t, uint32(3), r.ID)
	})
}

func TestList_Records_IsDefensiveCopy(t *testing.T) {
	l := New()
	_, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)

	records := l.Records()
	records[0] = nil
	r, err := l.GetIkmByID(1)
	require.NoError(t, err)
	assert.NotNil(t, r)
}
