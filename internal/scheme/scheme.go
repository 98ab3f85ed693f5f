// Package scheme implements the closed registry of AEAD/KDF tuples that back
// every IKM record: a scheme is a tagged variant selecting a KDF, an AEAD
// construction, a nonce generator, an IKM byte size and a derived-key byte
// size. Dispatch is a static lookup from tag to the constant function values
// below; there is no open extension point.
package scheme

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/zeebo/blake3"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/randclock"
)

// Tag identifies a scheme. Tags are stable and never reused for a different
// tuple; decoding an unrecognized tag is always an error.
type Tag uint32

const (
	// XChaCha20Poly1305Blake3 pairs BLAKE3 derive_key with XChaCha20-Poly1305.
	XChaCha20Poly1305Blake3 Tag = 1
	// AES128GCMSHA256 pairs HKDF-SHA256 with AES-128-GCM.
	AES128GCMSHA256 Tag = 2
)

// KDF derives a scheme.key_size byte key from ikm, bound to contextString.
type KDF func(contextString string, ikm []byte) ([]byte, error)

// AEADFactory builds a cipher.AEAD from a scheme.key_size byte key.
type AEADFactory func(key []byte) (cipher.AEAD, error)

// Scheme is one row of the registry: an IKM size, a derived-key size, a
// nonce size, a KDF and an AEAD factory.
type Scheme struct {
	Tag       Tag
	IkmSize   int
	KeySize   int
	NonceSize int
	KDF       KDF
	AEAD      AEADFactory
}

var registry = map[Tag]*Scheme{
	XChaCha20Poly1305Blake3: {
		Tag:       XChaCha20Poly1305Blake3,
		IkmSize:   32,
		KeySize:   32,
		NonceSize: chacha20poly1305.NonceSizeX,
		KDF:       blake3KDF,
		AEAD:      newXChaCha20Poly1305,
	},
	AES128GCMSHA256: {
		Tag:       AES128GCMSHA256,
		IkmSize:   32,
		KeySize:   16,
		NonceSize: 12,
		KDF:       hkdfSHA256KDF,
		AEAD:      newAES128GCM,
	},
}

// Lookup returns the Scheme registered for tag, or a
// ParsingSchemeUnknownSchemeError if tag is not registered.
func Lookup(tag Tag) (*Scheme, error) {
	s, ok := registry[tag]
	if !ok {
		return nil, &cerrors.ParsingSchemeUnknownSchemeError{Tag: uint32(tag)}
	}
	return s, nil
}

// GenNonce draws scheme.NonceSize cryptographically random bytes from src.
func (s *Scheme) GenNonce(src randclock.RandomSource) ([]byte, error) {
	nonce := make([]byte, s.NonceSize)
	if err := randclock.Fill(src, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// Encrypt seals plaintext under key and nonce, authenticating aad.
func (s *Scheme) Encrypt(key, nonce, plaintext, aad []byte) ([]byte, error) {
	aead, err := s.AEAD(key)
	if err != nil {
		return nil, &cerrors.AeadError{Underlying: err}
	}
	if len(nonce) != aead.NonceSize() {
		return nil, &cerrors.InvalidNonceSizeError{Expected: aead.NonceSize(), Got: len(nonce)}
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Decrypt opens ciphertext under key and nonce, verifying aad. A tag
// mismatch or malformed ciphertext surfaces as AeadError.
func (s *Scheme) Decrypt(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	aead, err := s.AEAD(key)
	if err != nil {
		return nil, &cerrors.AeadError{Underlying: err}
	}
	if len(nonce) != aead.NonceSize() {
		return nil, &cerrors.InvalidNonceSizeError{Expected: aead.NonceSize(), Got: len(nonce)}
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, &cerrors.AeadError{Underlying: err}
	}
	return plaintext, nil
}

func newXChaCha20Poly1305(key []byte) (cipher.AEAD, error) {
	return chacha20poly1305.NewX(key)
}

func newAES128GCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// blake3KDF implements the tag-1 KDF contract: BLAKE3's keyed derive_key
// function, with the canonical AAD text as the derivation context.
func blake3KDF(contextString string, ikm []byte) ([]byte, error) {
	out := make([]byte, 32)
	blake3.DeriveKey(contextString, ikm, out)
	return out, nil
}

// hkdfSHA256KDF implements the tag-2 KDF contract: HKDF-SHA256 with an empty
// salt and the canonical AAD text as info, truncated to 16 bytes.
func hkdfSHA256KDF(contextString string, ikm []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, nil, []byte(contextString))
	out := make([]byte, 16)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}
