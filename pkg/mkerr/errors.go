// Package mkerr implements the abstract error taxonomy of spec §7 as a
// small, matchable set of Kind values wrapped in a single Error type,
// adapted from the teacher's pkg/mpc error-wrapping pattern (Op+Err, a
// package-level errorf helper).
package mkerr

import "fmt"

// Kind classifies the abstract failure categories from spec §7.
type Kind string

const (
	// KeyGen covers commitment mismatch, invalid DLog proof, invalid
	// correct-key proof, invalid range proof, or invalid PDL during key
	// generation.
	KeyGen Kind = "key_gen"
	// Sign covers a signature that fails local or counterparty
	// verification.
	Sign Kind = "sign"
	// Proof covers an invalid commitment or DLog proof during chain-code
	// agreement.
	Proof Kind = "proof"
	// PDL covers a mismatch in the Proof-of-Discrete-Log-vs-Ciphertext
	// exchange.
	PDL Kind = "pdl"
	// RangeProof covers an invalid Paillier range proof.
	RangeProof Kind = "range_proof"
	// CorrectKey covers an invalid Paillier correct-key proof.
	CorrectKey Kind = "correct_key"
	// Commutativity is test-only: derived and rotated states disagree on
	// the aggregate public key.
	Commutativity Kind = "commutativity"
)

// Error wraps an underlying error with the operation that produced it and
// the abstract Kind it belongs to, so callers can match on Kind via
// errors.As without string comparison.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mkerr.%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("mkerr.%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, mkerr.KeyGen) style matching against a bare Kind
// by treating Kind as comparable to the Kind field of another *Error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && e.Kind == k
}

// Error implements the error interface for Kind itself, so a Kind can be
// used both as a matcher (via Error.Is) and as a standalone sentinel.
func (k Kind) Error() string { return string(k) }

// New builds an *Error for the given operation, kind, and cause.
func New(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Newf builds an *Error whose cause is fmt.Errorf(format, args...).
func Newf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
