package cipher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/ikm"
	"github.com/allisson/coffio/internal/keyctx"
	"github.com/allisson/coffio/internal/policy"
	"github.com/allisson/coffio/internal/randclock"
	"github.com/allisson/coffio/internal/scheme"
	"github.com/allisson/coffio/internal/storage"
)

func newTestList(t *testing.T) *ikm.List {
	t.Helper()
	l := ikm.New()
	_, err := l.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)
	return l
}

func TestEngine_RoundTrip_StaticXChaCha20(t *testing.T) {
	list := newTestList(t)
	engine := NewEngine(list)

	keyCtx := keyctx.NewKeyContext()
	dataCtx := keyctx.NewDataContext()
	plaintext := []byte("Lorem ipsum dolor sit amet.")

	token, err := engine.Encrypt(keyCtx, dataCtx, plaintext)
	require.NoError(t, err)
	assert.Contains(t, token, "enc-v1:")

	got, err := engine.Decrypt(keyCtx, dataCtx, token)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEngine_RoundTrip_PeriodicAES128GCM(t *testing.T) {
	list := ikm.New()
	_, err := list.AddCustomIkm(
		randclock.SystemRandomSource(),
		scheme.AES128GCMSHA256,
		time.Now().Add(-time.Hour),
		time.Now().Add(time.Hour),
	)
	require.NoError(t, err)

	engine := NewEngine(list)
	keyCtx := keyctx.NewDefaultPeriodicKeyContext("db_name", "table_name", "column_name")
	dataCtx := keyctx.NewDataContext("018db876-3d9d-79af-9460-55d17da991d8")
	plaintext := []byte("secret value")

	token, err := engine.Encrypt(keyCtx, dataCtx, plaintext)
	require.NoError(t, err)

	got, err := engine.Decrypt(keyCtx, dataCtx, token)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestEngine_Decrypt_TamperedNonceRejected(t *testing.T) {
	list := newTestList(t)
	engine := NewEngine(list)
	keyCtx := keyctx.NewKeyContext()
	dataCtx := keyctx.NewDataContext()

	token, err := engine.Encrypt(keyCtx, dataCtx, []byte("payload"))
	require.NoError(t, err)

	tampered := []rune(token)
	for i, r := range tampered {
		if r != ':' && i > len("enc-v1:")+8 {
			tampered[i] = flipRune(r)
			break
		}
	}

	_, err = engine.Decrypt(keyCtx, dataCtx, string(tampered))
	assert.Error(t, err)
}

func flipRune(r rune) rune {
	if r == 'A' {
		return 'B'
	}
	return 'A'
}

func TestEngine_Decrypt_KeyContextMismatchRejected(t *testing.T) {
	list := newTestList(t)
	engine := NewEngine(list)
	dataCtx := keyctx.NewDataContext()

	token, err := engine.Encrypt(keyctx.NewKeyContext("db", "table"), dataCtx, []byte("payload"))
	require.NoError(t, err)

	_, err = engine.Decrypt(keyctx.NewKeyContext("wrong", "context"), dataCtx, token)
	assert.Error(t, err)
}

func TestEngine_Decrypt_DataContextMismatchRejected(t *testing.T) {
	list := newTestList(t)
	engine := NewEngine(list)
	keyCtx := keyctx.NewKeyContext()

	token, err := engine.Encrypt(keyCtx, keyctx.NewDataContext("row-1"), []byte("payload"))
	require.NoError(t, err)

	_, err = engine.Decrypt(keyCtx, keyctx.NewDataContext("row-2"), token)
	assert.Error(t, err)
}

func TestEngine_Decrypt_UnknownIkmId(t *testing.T) {
	list := newTestList(t)
	engine := NewEngine(list)
	keyCtx := keyctx.NewKeyContext()
	dataCtx := keyctx.NewDataContext()

	nonce := []byte("noncebytesnoncebytes1234")
	ciphertext := []byte("ciphertextbytes")
	token := storage.EncodeToken(999, nonce, ciphertext, nil)

	_, err := engine.Decrypt(keyCtx, dataCtx, token)
	var notFound *cerrors.IkmNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestEngine_DecryptWithPolicy_RevokedDenied(t *testing.T) {
	list := ikm.New()
	id, err := list.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	require.NoError(t, err)

	engine := NewEngine(list)
	keyCtx := keyctx.NewKeyContext()
	dataCtx := keyctx.NewDataContext()

	token, err := engine.Encrypt(keyCtx, dataCtx, []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, list.RevokeIkm(id))

	pol := policy.Default()
	pol.Revoked = policy.Deny
	_, err = engine.DecryptWithPolicy(keyCtx, dataCtx, token, pol)
	assert.ErrorIs(t, err, cerrors.ErrPolicyDecryptionRevoked)

	_, err = engine.DecryptWithPolicy(keyCtx, dataCtx, token, policy.Default())
	assert.NoError(t, err, "default policy warns on revoked and still succeeds")
}

func TestEngine_EncryptAtTime_NoIkmAvailable(t *testing.T) {
	list := ikm.New()
	engine := NewEngine(list)
	keyCtx := keyctx.NewKeyContext()
	dataCtx := keyctx.NewDataContext()

	_, err := engine.EncryptAtTime(keyCtx, dataCtx, []byte("payload"), time.Unix(0, 0))
	assert.ErrorIs(t, err, cerrors.ErrIkmNoneAvailable)
}
