// Package logging provides a minimal logging facade for the two-party key
// management core.
//
// The core itself performs no I/O and owns no logger of its own; protocol
// constructors accept an optional Logger so a caller embedding the core in
// a service can observe round transitions and abort reasons without the
// core depending on any particular logging backend. A nil Logger is
// replaced with NoOp, so passing nothing is always safe.
//
//	logger := logging.New(nil)       // slog.Default()
//	logger.Debug(ctx, "round1 sent", "party", "p1")
//
// Security: never log raw secret scalars, Paillier decryption keys, or
// signatures' message hashes. Use Redacted to mark an attribute as
// intentionally withheld instead of omitting the field entirely.
package logging
