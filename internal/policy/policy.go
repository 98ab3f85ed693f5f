// Package policy implements the decrypt-time gating of acceptable IKMs:
// five independently configurable conditions, each mapped to an action of
// Allow, Warn or Deny, evaluated in a fixed order with short-circuit on the
// first Deny.
package policy

import (
	"log/slog"
	"time"

	cerrors "github.com/allisson/coffio/internal/cerrors"
	"github.com/allisson/coffio/internal/ikm"
)

// Action is the outcome of evaluating a single policy condition.
type Action int

const (
	// Allow is silent and permits decryption to continue.
	Allow Action = iota
	// Warn emits a structured warning and permits decryption to continue.
	Warn
	// Deny aborts decryption with the condition's error.
	Deny
)

// Policy holds the configured action for each of the five decrypt-time
// conditions. The zero value is not valid; use Default to obtain the
// spec-mandated defaults.
type Policy struct {
	Revoked             Action
	ExpiredNow          Action
	ExpiredAtEncryption Action
	EarlyEncryption     Action
	FutureEncryption    Action
}

// Default returns the default policy: Revoked=Warn, ExpiredNow=Warn,
// ExpiredAtEncryption=Deny, EarlyEncryption=Deny, FutureEncryption=Deny.
func Default() Policy {
	return Policy{
		Revoked:             Warn,
		ExpiredNow:          Warn,
		ExpiredAtEncryption: Deny,
		EarlyEncryption:     Deny,
		FutureEncryption:    Deny,
	}
}

// Check evaluates the five conditions against ikm in the fixed spec order,
// short-circuiting on the first Deny. periodicity and timePeriod come from
// the key context and the decoded token respectively; periodicity is zero
// when the key context is static, in which case the time-period-dependent
// conditions never fire.
func (p Policy) Check(logger *slog.Logger, record *ikm.Record, periodicity uint64, timePeriod *uint64, now time.Time) error {
	if record.IsRevoked {
		if err := p.act(logger, p.Revoked, cerrors.ErrPolicyDecryptionRevoked, "ikm_id", record.ID); err != nil {
			return err
		}
	}

	if now.After(record.NotAfter) {
		if err := p.act(logger, p.ExpiredNow, cerrors.ErrPolicyDecryptionExpiredNow, "ikm_id", record.ID); err != nil {
			return err
		}
	}

	if timePeriod != nil && periodicity > 0 {
		notAfterSecs := uint64(record.NotAfter.Unix())
		notBeforeSecs := uint64(record.NotBefore.Unix())
		nowSecs := uint64(now.Unix())

		maxTp := notAfterSecs / periodicity
		if *timePeriod > maxTp {
			if err := p.act(logger, p.ExpiredAtEncryption, cerrors.ErrPolicyDecryptionExpiredEnc, "ikm_id", record.ID); err != nil {
				return err
			}
		}

		minTp := notBeforeSecs / periodicity
		if *timePeriod < minTp {
			if err := p.act(logger, p.EarlyEncryption, cerrors.ErrPolicyDecryptionEarly, "ikm_id", record.ID); err != nil {
				return err
			}
		}

		nowTp := nowSecs / periodicity
		if *timePeriod > nowTp {
			if err := p.act(logger, p.FutureEncryption, cerrors.ErrPolicyDecryptionFuture, "ikm_id", record.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p Policy) act(logger *slog.Logger, action Action, err error, logKey string, logVal any) error {
	switch action {
	case Deny:
		return err
	case Warn:
		if logger != nil {
			logger.Warn(err.Error(), logKey, logVal)
		}
		return nil
	default:
		return nil
	}
}
