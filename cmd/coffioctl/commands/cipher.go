package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/allisson/coffio"
	"github.com/allisson/coffio/internal/validation"
)

// SplitContext splits a comma-separated context flag value into its ordered
// elements. An empty string yields zero elements, not one empty element.
func SplitContext(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// ValidateContextElements rejects blank or whitespace-padded context
// elements before they reach canonicalization, where a stray leading or
// trailing space would silently change the derived key or the AAD.
func ValidateContextElements(elements []string) error {
	for _, e := range elements {
		if err := validation.NotBlank.Validate(e); err != nil {
			return validation.WrapValidationError(err)
		}
		if err := validation.NoWhitespace.Validate(e); err != nil {
			return validation.WrapValidationError(err)
		}
	}
	return nil
}

// BuildKeyContext builds a key context from the --key-ctx/--periodic/
// --periodicity flag values shared by encrypt and decrypt.
func BuildKeyContext(elements []string, periodic bool, periodicity uint64) (*coffio.KeyContext, error) {
	if !periodic {
		return coffio.NewKeyContext(elements...), nil
	}
	if periodicity > 0 {
		return coffio.NewPeriodicKeyContext(periodicity, elements...)
	}
	return coffio.NewDefaultPeriodicKeyContext(elements...), nil
}

// RunEncrypt derives a key from the IKM list at path and encrypts plaintext
// under keyCtxElements/dataCtxElements, writing the resulting token to w.
func RunEncrypt(
	path string, keyCtxElements, dataCtxElements []string, periodic bool, periodicity uint64,
	plaintext string, logger *slog.Logger, w io.Writer,
) error {
	if err := ValidateContextElements(keyCtxElements); err != nil {
		return fmt.Errorf("key context: %w", err)
	}
	if err := ValidateContextElements(dataCtxElements); err != nil {
		return fmt.Errorf("data context: %w", err)
	}

	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	keyCtx, err := BuildKeyContext(keyCtxElements, periodic, periodicity)
	if err != nil {
		return fmt.Errorf("build key context: %w", err)
	}
	dataCtx := coffio.NewDataContext(dataCtxElements...)

	engine := coffio.NewCipherEngine(list, coffio.WithLogger(logger))
	token, err := engine.Encrypt(keyCtx, dataCtx, []byte(plaintext))
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	fmt.Fprintln(w, token)
	return nil
}

// RunDecrypt decodes token against the IKM list at path under the default
// policy, writing the recovered plaintext to w.
func RunDecrypt(
	path string, keyCtxElements, dataCtxElements []string, periodic bool, periodicity uint64,
	token string, logger *slog.Logger, w io.Writer,
) error {
	if err := ValidateContextElements(keyCtxElements); err != nil {
		return fmt.Errorf("key context: %w", err)
	}
	if err := ValidateContextElements(dataCtxElements); err != nil {
		return fmt.Errorf("data context: %w", err)
	}

	list, err := ReadIkmList(path)
	if err != nil {
		return err
	}

	keyCtx, err := BuildKeyContext(keyCtxElements, periodic, periodicity)
	if err != nil {
		return fmt.Errorf("build key context: %w", err)
	}
	dataCtx := coffio.NewDataContext(dataCtxElements...)

	engine := coffio.NewCipherEngine(list, coffio.WithLogger(logger))
	plaintext, err := engine.Decrypt(keyCtx, dataCtx, token)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}

	fmt.Fprintln(w, string(plaintext))
	return nil
}
