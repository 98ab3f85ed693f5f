// Package commands contains coffioctl command implementations, split from
// flag parsing so each one can be exercised directly in tests.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/allisson/coffio"
	"github.com/allisson/coffio/internal/randclock"
)

// ReadIkmList loads the ikml-v1 list at path, or returns a fresh empty list
// if the file does not exist yet.
func ReadIkmList(path string) (*coffio.IkmList, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return coffio.NewIkmList(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ikm list: %w", err)
	}
	list, err := coffio.ImportIkmList(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode ikm list: %w", err)
	}
	return list, nil
}

// WriteIkmList serializes list to its ikml-v1 form and writes it to path.
func WriteIkmList(path string, list *coffio.IkmList) error {
	if err := os.WriteFile(path, []byte(coffio.ExportIkmList(list)), 0o600); err != nil {
		return fmt.Errorf("write ikm list: %w", err)
	}
	return nil
}

// RunAddIkm generates a new IKM using the default scheme and ten-year
// validity window and appends it to the list at path.
func RunAddIkm(path string, logger *slog.Logger, w io.Writer) error {
	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	id, err := list.AddIkm(randclock.SystemRandomSource(), randclock.SystemClock())
	if err != nil {
		return fmt.Errorf("add ikm: %w", err)
	}

	if err := WriteIkmList(path, list); err != nil {
		return err
	}

	logger.Info("added ikm", slog.Uint64("id", uint64(id)), slog.String("path", path))
	fmt.Fprintln(w, id)
	return nil
}

// RunAddCustomIkm generates a new IKM under an explicit scheme tag and
// validity window starting now and appends it to the list at path.
func RunAddCustomIkm(path string, schemeTag coffio.SchemeTag, duration time.Duration, logger *slog.Logger, w io.Writer) error {
	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	now := time.Now()
	id, err := list.AddCustomIkm(randclock.SystemRandomSource(), schemeTag, now, now.Add(duration))
	if err != nil {
		return fmt.Errorf("add custom ikm: %w", err)
	}

	if err := WriteIkmList(path, list); err != nil {
		return err
	}

	logger.Info("added custom ikm", slog.Uint64("id", uint64(id)), slog.String("path", path))
	fmt.Fprintln(w, id)
	return nil
}

// RunRevokeIkm marks the IKM identified by id as revoked.
func RunRevokeIkm(path string, id uint32, logger *slog.Logger) error {
	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	if err := list.RevokeIkm(id); err != nil {
		return fmt.Errorf("revoke ikm: %w", err)
	}

	if err := WriteIkmList(path, list); err != nil {
		return err
	}

	logger.Info("revoked ikm", slog.Uint64("id", uint64(id)), slog.String("path", path))
	return nil
}

// RunDeleteIkm permanently removes the IKM identified by id from the list.
func RunDeleteIkm(path string, id uint32, logger *slog.Logger) error {
	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	if err := list.DeleteIkm(id); err != nil {
		return fmt.Errorf("delete ikm: %w", err)
	}

	if err := WriteIkmList(path, list); err != nil {
		return err
	}

	logger.Info("deleted ikm", slog.Uint64("id", uint64(id)), slog.String("path", path))
	return nil
}

// RunListIkms prints one line per IKM record in the list at path.
func RunListIkms(path string, w io.Writer) error {
	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	for _, record := range list.Records() {
		fmt.Fprintf(
			w, "id=%d scheme=%d not_before=%s not_after=%s revoked=%t\n",
			record.ID, record.Scheme, record.NotBefore.Format(time.RFC3339),
			record.NotAfter.Format(time.RFC3339), record.IsRevoked,
		)
	}
	return nil
}
