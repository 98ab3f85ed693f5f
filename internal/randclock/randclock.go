// Package randclock defines the two external collaborators the core library
// borrows from its host instead of owning: a cryptographically secure random
// byte source and a wall clock. Both are narrow interfaces so tests can
// inject deterministic fakes without the core ever importing a test package.
package randclock

import (
	"crypto/rand"
	"io"
	"time"

	cerrors "github.com/allisson/coffio/internal/cerrors"
)

// RandomSource fills a buffer with cryptographically secure random bytes.
// Implementations must either fill the entire buffer or return a non-nil
// error; partial fills are never silently accepted.
type RandomSource interface {
	Read(p []byte) (n int, err error)
}

// Clock reports the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// systemRandomSource is the default RandomSource, backed by the OS CSPRNG.
type systemRandomSource struct{}

// SystemRandomSource returns the default RandomSource backed by crypto/rand.
func SystemRandomSource() RandomSource { return systemRandomSource{} }

func (systemRandomSource) Read(p []byte) (int, error) {
	return io.ReadFull(rand.Reader, p)
}

// systemClock is the default Clock, backed by time.Now.
type systemClock struct{}

// SystemClock returns the default Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// Fill reads exactly len(p) random bytes from src into p, wrapping any
// failure as cerrors.ErrRandomSource so callers never see a raw io error
// alongside secret-adjacent buffers.
func Fill(src RandomSource, p []byte) error {
	n, err := src.Read(p)
	if err != nil || n != len(p) {
		return cerrors.ErrRandomSource
	}
	return nil
}
